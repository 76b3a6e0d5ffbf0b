// Package indicator rescales safety indices between exposure-hours bases.
//
// Upstream summaries arrive with LTIR and TRIR already computed against the
// 200,000-hour reference basis. Switching the dashboard to the 1,000,000-hour
// basis is a pure linear rescale, so no refetch or raw-count recomputation is
// needed when the user toggles.
package indicator

import (
	"fmt"

	"github.com/ehs-tools/safety-dashboard/internal/summary"
	"github.com/ehs-tools/safety-dashboard/pkg/constants"
)

// Basis is the exposure-hours denominator for LTIR and TRIR.
type Basis float64

const (
	// BasisReference is 200,000 exposure hours, the basis upstream data is
	// expressed in.
	BasisReference Basis = constants.ReferenceBasisHours

	// BasisMillion is 1,000,000 exposure hours.
	BasisMillion Basis = constants.MillionHoursBasis
)

// ParseBasis maps a numeric basis value onto the admissible set.
func ParseBasis(value float64) (Basis, error) {
	switch Basis(value) {
	case BasisReference:
		return BasisReference, nil
	case BasisMillion:
		return BasisMillion, nil
	default:
		return 0, fmt.Errorf("invalid normalization basis %v: must be %v or %v",
			value, float64(BasisReference), float64(BasisMillion))
	}
}

// Valid reports whether the basis is one of the two admissible values.
func (b Basis) Valid() bool {
	return b == BasisReference || b == BasisMillion
}

// Recalculate returns a copy of the summary with LTIR and TRIR rescaled to
// the given basis. The severity rate is expressed per 1,000 exposure hours by
// definition and is copied unchanged. The input summary is never mutated.
func Recalculate(s summary.YearSummary, basis Basis) (summary.YearSummary, error) {
	if !basis.Valid() {
		return summary.YearSummary{}, fmt.Errorf("invalid normalization basis %v: must be %v or %v",
			float64(basis), float64(BasisReference), float64(BasisMillion))
	}

	ratio := float64(basis) / constants.ReferenceBasisHours

	out := s.Clone()
	out.LTIR = scaleTriple(s.LTIR, ratio)
	out.TRIR = scaleTriple(s.TRIR, ratio)
	return out, nil
}

func scaleTriple(t summary.Triple, ratio float64) summary.Triple {
	return summary.Triple{
		Total:      t.Total * ratio,
		Employee:   t.Employee * ratio,
		Contractor: t.Contractor * ratio,
	}
}
