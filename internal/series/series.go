// Package series assembles multi-year, chart-ready series from per-year
// safety summaries.
package series

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ehs-tools/safety-dashboard/internal/indicator"
	"github.com/ehs-tools/safety-dashboard/internal/summary"
	"go.uber.org/zap"
)

// SummaryFetcher is the external collaborator that supplies raw per-year
// summary payloads. Implementations own transport, retries, and deadlines;
// the aggregator only requires that a fetch respects context cancellation.
type SummaryFetcher interface {
	FetchYearSummary(ctx context.Context, year int) (map[string]any, error)
}

// YearResult is the per-year outcome of a multi-year collection. A failed or
// cancelled fetch degrades to an all-zero summary with Degraded set and the
// cause retained, so charts always have a point to render while callers can
// still flag partial data.
type YearResult struct {
	Year     int
	Summary  summary.YearSummary // normalized, reference basis
	Adjusted summary.YearSummary // rescaled to the requested basis
	Degraded bool
	Err      error
}

// TrendPoint is one year in the accident/victim/damage trend chart.
type TrendPoint struct {
	Year           int     `json:"year"`
	AccidentCount  int     `json:"accidentCount"`
	VictimCount    int     `json:"victimCount"`
	PropertyDamage float64 `json:"propertyDamage"`
}

// IndexPoint is one year in the safety-index chart, expressed under the
// basis the series was collected with.
type IndexPoint struct {
	Year         int     `json:"year"`
	LTIR         float64 `json:"ltir"`
	TRIR         float64 `json:"trir"`
	SeverityRate float64 `json:"severityRate"`
}

// DetailPoint is one year in the detailed chart variants, carrying full
// employee/contractor breakdowns and per-site accident counts.
type DetailPoint struct {
	Year               int            `json:"year"`
	LTIR               summary.Triple `json:"ltir"`
	TRIR               summary.Triple `json:"trir"`
	SeverityRate       summary.Triple `json:"severityRate"`
	SiteAccidentCounts map[string]int `json:"siteAccidentCounts"`
}

// Aggregator fetches and normalizes summaries for sets of years and projects
// them into chart series.
type Aggregator struct {
	fetcher SummaryFetcher
	logger  *zap.Logger
}

// NewAggregator constructs an Aggregator around the given fetch collaborator.
func NewAggregator(fetcher SummaryFetcher, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{fetcher: fetcher, logger: logger}
}

// Year fetches, normalizes, and rescales the summary for a single year; this
// backs the dashboard card surface. Unlike Collect, a fetch failure here is
// surfaced to the caller rather than degraded.
func (a *Aggregator) Year(ctx context.Context, year int, basis indicator.Basis) (YearResult, error) {
	if !basis.Valid() {
		return YearResult{}, fmt.Errorf("invalid normalization basis %v", float64(basis))
	}

	raw, err := a.fetcher.FetchYearSummary(ctx, year)
	if err != nil {
		return YearResult{}, fmt.Errorf("fetching summary for %d: %w", year, err)
	}

	s := summary.Normalize(a.logger, raw, year)
	s.Year = year
	adjusted, err := indicator.Recalculate(s, basis)
	if err != nil {
		return YearResult{}, err
	}
	return YearResult{Year: year, Summary: s, Adjusted: adjusted}, nil
}

// Collect fetches one summary per distinct requested year, fanning the
// fetches out concurrently and waiting for the full set. Results come back
// ascending by year regardless of input order or fetch completion order. A
// failed or cancelled year degrades to zero values instead of failing the
// collection; only an invalid basis is a hard error.
func (a *Aggregator) Collect(ctx context.Context, years []int, basis indicator.Basis) ([]YearResult, error) {
	if !basis.Valid() {
		return nil, fmt.Errorf("invalid normalization basis %v", float64(basis))
	}

	ordered := distinctAscending(years)
	results := make([]YearResult, len(ordered))

	var wg sync.WaitGroup
	for i, year := range ordered {
		wg.Add(1)
		go func(slot int, year int) {
			defer wg.Done()
			results[slot] = a.collectYear(ctx, year, basis)
		}(i, year)
	}
	wg.Wait()

	return results, nil
}

func (a *Aggregator) collectYear(ctx context.Context, year int, basis indicator.Basis) YearResult {
	raw, err := a.fetcher.FetchYearSummary(ctx, year)
	if err != nil {
		a.logger.Warn("year summary fetch failed, degrading to zero values",
			zap.String("op", "series.Collect"),
			zap.Int("year", year),
			zap.Error(err),
		)
		zero := summary.Zero(year)
		return YearResult{Year: year, Summary: zero, Adjusted: zero, Degraded: true, Err: err}
	}

	s := summary.Normalize(a.logger, raw, year)
	s.Year = year
	adjusted, err := indicator.Recalculate(s, basis)
	if err != nil {
		// Basis was validated up front; reaching this means a programming
		// error, but the series contract still guarantees a point.
		zero := summary.Zero(year)
		return YearResult{Year: year, Summary: zero, Adjusted: zero, Degraded: true, Err: err}
	}
	return YearResult{Year: year, Summary: s, Adjusted: adjusted}
}

// Trend projects results into the accident/victim/damage trend series.
func Trend(results []YearResult) []TrendPoint {
	points := make([]TrendPoint, 0, len(results))
	for _, r := range results {
		points = append(points, TrendPoint{
			Year:           r.Year,
			AccidentCount:  r.Summary.AccidentCount.Total,
			VictimCount:    r.Summary.VictimCount.Total,
			PropertyDamage: r.Summary.PropertyDamage.Total,
		})
	}
	return points
}

// SafetyIndex projects results into the LTIR/TRIR/severity series under the
// basis the results were collected with.
func SafetyIndex(results []YearResult) []IndexPoint {
	points := make([]IndexPoint, 0, len(results))
	for _, r := range results {
		points = append(points, IndexPoint{
			Year:         r.Year,
			LTIR:         r.Adjusted.LTIR.Total,
			TRIR:         r.Adjusted.TRIR.Total,
			SeverityRate: r.Adjusted.SeverityRate.Total,
		})
	}
	return points
}

// Detailed projects results into the full-breakdown series used by the
// detailed chart variants.
func Detailed(results []YearResult) []DetailPoint {
	points := make([]DetailPoint, 0, len(results))
	for _, r := range results {
		points = append(points, DetailPoint{
			Year:               r.Year,
			LTIR:               r.Adjusted.LTIR,
			TRIR:               r.Adjusted.TRIR,
			SeverityRate:       r.Adjusted.SeverityRate,
			SiteAccidentCounts: r.Adjusted.SiteAccidentCounts,
		})
	}
	return points
}

// DegradedYears lists the years that fell back to zero values, ascending.
func DegradedYears(results []YearResult) []int {
	years := make([]int, 0)
	for _, r := range results {
		if r.Degraded {
			years = append(years, r.Year)
		}
	}
	return years
}

func distinctAscending(years []int) []int {
	seen := make(map[int]struct{}, len(years))
	ordered := make([]int, 0, len(years))
	for _, year := range years {
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		ordered = append(ordered, year)
	}
	sort.Ints(ordered)
	return ordered
}
