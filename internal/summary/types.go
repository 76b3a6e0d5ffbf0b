// Package summary defines the internal representation of one year's safety
// metrics and includes functions for normalizing raw upstream payloads into
// that representation.
package summary

// CountTriple splits an incident count into its employee/contractor parts.
// Source data may report a total that disagrees with employee + contractor;
// the discrepancy is carried as-is rather than reconciled.
type CountTriple struct {
	Total      int `json:"total"`
	Employee   int `json:"employee"`
	Contractor int `json:"contractor"`
}

// Triple splits a continuous quantity (hours, days, or a rate) into its
// employee/contractor parts.
type Triple struct {
	Total      float64 `json:"total"`
	Employee   float64 `json:"employee"`
	Contractor float64 `json:"contractor"`
}

// Damage holds property damage amounts in base currency units.
type Damage struct {
	Direct   float64 `json:"direct"`
	Indirect float64 `json:"indirect"`
	Total    float64 `json:"total"`
}

// InjuryClass is the closed set of injury-severity categories tracked by the
// dashboard. Upstream labels are free-form and are re-mapped onto this set
// during normalization.
type InjuryClass string

const (
	InjuryDeath    InjuryClass = "death"
	InjurySerious  InjuryClass = "serious"
	InjuryMinor    InjuryClass = "minor"
	InjuryHospital InjuryClass = "hospital"
	InjuryFirstAid InjuryClass = "firstAid"
	InjuryOther    InjuryClass = "other"
)

// InjuryClasses returns every tracked injury-severity category.
func InjuryClasses() []InjuryClass {
	return []InjuryClass{
		InjuryDeath,
		InjurySerious,
		InjuryMinor,
		InjuryHospital,
		InjuryFirstAid,
		InjuryOther,
	}
}

// YearSummary is the fully-defaulted safety record for one calendar year.
// Instances are never mutated after normalization; recalculation under a
// different exposure basis produces a fresh value.
type YearSummary struct {
	Year               int                 `json:"year"`
	AccidentCount      CountTriple         `json:"accidentCount"`
	VictimCount        CountTriple         `json:"victimCount"`
	PropertyDamage     Damage              `json:"propertyDamage"`
	WorkingHours       Triple              `json:"workingHours"`
	LossDays           Triple              `json:"lossDays"`
	InjuryTypeCounts   map[InjuryClass]int `json:"injuryTypeCounts"`
	SiteAccidentCounts map[string]int      `json:"siteAccidentCounts"`
	LTIR               Triple              `json:"ltir"`
	TRIR               Triple              `json:"trir"`
	SeverityRate       Triple              `json:"severityRate"`

	// Normalized marks a summary that has already been through Normalize,
	// so the monetary unit conversion is applied exactly once even if the
	// serialized form is fed back in as raw input.
	Normalized bool `json:"normalized"`
}

// Zero returns an all-zero summary for the given year, with every injury
// class present at zero and an empty site map. Degraded fetches resolve to
// this shape so multi-year charts always have a point to render.
func Zero(year int) YearSummary {
	counts := make(map[InjuryClass]int, len(InjuryClasses()))
	for _, class := range InjuryClasses() {
		counts[class] = 0
	}
	return YearSummary{
		Year:               year,
		InjuryTypeCounts:   counts,
		SiteAccidentCounts: map[string]int{},
		Normalized:         true,
	}
}

// Clone returns a deep copy of the summary. The maps are copied so the
// original stays immutable when callers adjust the result.
func (s YearSummary) Clone() YearSummary {
	out := s
	out.InjuryTypeCounts = make(map[InjuryClass]int, len(s.InjuryTypeCounts))
	for class, count := range s.InjuryTypeCounts {
		out.InjuryTypeCounts[class] = count
	}
	out.SiteAccidentCounts = make(map[string]int, len(s.SiteAccidentCounts))
	for site, count := range s.SiteAccidentCounts {
		out.SiteAccidentCounts[site] = count
	}
	return out
}
