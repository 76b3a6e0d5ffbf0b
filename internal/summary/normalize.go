package summary

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ehs-tools/safety-dashboard/pkg/constants"
	"go.uber.org/zap"
)

// injuryLabelMap translates the free-form category labels used by upstream
// systems onto the closed InjuryClass set. Keys are canonicalized (lowercase,
// separators stripped) before lookup. Labels with no entry here are dropped
// with a warning rather than failing the summary.
var injuryLabelMap = map[string]InjuryClass{
	"death":             InjuryDeath,
	"fatal":             InjuryDeath,
	"fatality":          InjuryDeath,
	"serious":           InjurySerious,
	"seriousinjury":     InjurySerious,
	"major":             InjurySerious,
	"minor":             InjuryMinor,
	"minorinjury":       InjuryMinor,
	"light":             InjuryMinor,
	"hospital":          InjuryHospital,
	"hospitalization":   InjuryHospital,
	"hospitaltreatment": InjuryHospital,
	"firstaid":          InjuryFirstAid,
	"firstaidonly":      InjuryFirstAid,
	"other":             InjuryOther,
	"etc":               InjuryOther,
}

// NormalizeJSON decodes a raw upstream payload and normalizes it. The only
// hard failure is a payload that is not a JSON object; that indicates an
// upstream contract violation rather than missing data.
func NormalizeJSON(logger *zap.Logger, data []byte, year int) (YearSummary, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return YearSummary{}, fmt.Errorf("summary payload for %d is not valid JSON: %w", year, err)
	}
	raw, ok := decoded.(map[string]any)
	if !ok {
		return YearSummary{}, fmt.Errorf("summary payload for %d is not a JSON object", year)
	}
	return Normalize(logger, raw, year), nil
}

// Normalize converts a partially-populated raw payload into a fully-defaulted
// YearSummary. Missing leaves become 0, missing nested objects become
// all-zero shapes, monetary amounts convert from the upstream thousand-unit
// convention to base units, and injury labels are re-mapped onto the closed
// category set. The function is total over any map shape, including nil.
func Normalize(logger *zap.Logger, raw map[string]any, year int) YearSummary {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := Zero(year)
	if y, ok := numberAt(raw, "year"); ok && int(y) != 0 {
		s.Year = int(y)
	}

	s.AccidentCount = countTripleAt(raw, "accidentCount")
	s.VictimCount = countTripleAt(raw, "victimCount")
	s.WorkingHours = tripleAt(raw, "workingHours")
	s.LossDays = tripleAt(raw, "lossDays")
	s.LTIR = tripleAt(raw, "ltir")
	s.TRIR = tripleAt(raw, "trir")
	s.SeverityRate = tripleAt(raw, "severityRate")

	alreadyNormalized, _ := boolAt(raw, "normalized")
	s.PropertyDamage = damageAt(raw, "propertyDamage", alreadyNormalized)

	normalizeInjuryCounts(logger, raw, s.InjuryTypeCounts, s.Year)
	normalizeSiteCounts(raw, s.SiteAccidentCounts)

	return s
}

// damageAt reads the property damage block, applying the thousand-unit
// conversion unless the payload is marked as already normalized. When the
// upstream omits the total it is derived from the converted parts; a supplied
// total passes through untouched even if it disagrees with the parts.
func damageAt(raw map[string]any, key string, alreadyNormalized bool) Damage {
	obj := objectAt(raw, key)
	factor := constants.DamageUnitFactor
	if alreadyNormalized {
		factor = 1
	}

	d := Damage{}
	if v, ok := numberAt(obj, "direct"); ok {
		d.Direct = v * factor
	}
	if v, ok := numberAt(obj, "indirect"); ok {
		d.Indirect = v * factor
	}
	if v, ok := numberAt(obj, "total"); ok {
		d.Total = v * factor
	} else {
		d.Total = d.Direct + d.Indirect
	}
	return d
}

func normalizeInjuryCounts(logger *zap.Logger, raw map[string]any, counts map[InjuryClass]int, year int) {
	obj := objectAt(raw, "injuryTypeCounts")
	for label, value := range obj {
		class, ok := injuryLabelMap[canonicalLabel(label)]
		if !ok {
			logger.Warn("dropping unmapped injury category label",
				zap.String("op", "summary.Normalize"),
				zap.String("label", label),
				zap.Int("year", year),
			)
			continue
		}
		if n, ok := asNumber(value); ok {
			counts[class] += int(n)
		}
	}
}

func normalizeSiteCounts(raw map[string]any, counts map[string]int) {
	obj := objectAt(raw, "siteAccidentCounts")
	for site, value := range obj {
		if n, ok := asNumber(value); ok {
			counts[site] = int(n)
		}
	}
}

// canonicalLabel lowercases a free-form category label and strips separator
// characters so variants like "First Aid", "first_aid", and "firstAid" all
// hit the same mapping entry.
func canonicalLabel(label string) string {
	lowered := strings.ToLower(strings.TrimSpace(label))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}
		return r
	}, lowered)
}

func countTripleAt(raw map[string]any, key string) CountTriple {
	t := tripleAt(raw, key)
	return CountTriple{
		Total:      int(t.Total),
		Employee:   int(t.Employee),
		Contractor: int(t.Contractor),
	}
}

func tripleAt(raw map[string]any, key string) Triple {
	obj := objectAt(raw, key)
	t := Triple{}
	if v, ok := numberAt(obj, "total"); ok {
		t.Total = v
	}
	if v, ok := numberAt(obj, "employee"); ok {
		t.Employee = v
	}
	if v, ok := numberAt(obj, "contractor"); ok {
		t.Contractor = v
	}
	return t
}

func objectAt(raw map[string]any, key string) map[string]any {
	if raw == nil {
		return nil
	}
	obj, _ := raw[key].(map[string]any)
	return obj
}

func numberAt(obj map[string]any, key string) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	return asNumber(obj[key])
}

func boolAt(obj map[string]any, key string) (bool, bool) {
	if obj == nil {
		return false, false
	}
	b, ok := obj[key].(bool)
	return b, ok
}

// asNumber coerces the numeric representations a JSON decode (or a permissive
// upstream) can produce. Anything else counts as missing.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
