package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/ehs-tools/safety-dashboard/internal/indicator"
	"go.uber.org/zap"
)

type stubFetcher struct {
	payloads map[int]map[string]any
	errs     map[int]error
}

func (f *stubFetcher) FetchYearSummary(ctx context.Context, year int) (map[string]any, error) {
	if err, ok := f.errs[year]; ok {
		return nil, err
	}
	payload, ok := f.payloads[year]
	if !ok {
		return nil, fmt.Errorf("no summary for year %d", year)
	}
	return payload, nil
}

type stubLister struct {
	codes []string
	err   error
}

func (l *stubLister) FetchAccidentCodes(ctx context.Context) ([]string, error) {
	return l.codes, l.err
}

func testPayload(ltir float64) map[string]any {
	return map[string]any{
		"accidentCount": map[string]any{"total": 3.0, "employee": 2.0, "contractor": 1.0},
		"victimCount":   map[string]any{"total": 4.0},
		"propertyDamage": map[string]any{
			"direct":   20.0,
			"indirect": 10.0,
		},
		"ltir":         map[string]any{"total": ltir},
		"trir":         map[string]any{"total": ltir * 2},
		"severityRate": map[string]any{"total": 0.4},
	}
}

func newTestHandler(fetcher *stubFetcher, lister *stubLister) http.Handler {
	return NewHandler(zap.NewNop(), fetcher, lister, indicator.BasisReference, "test")
}

func TestHandleYears(t *testing.T) {
	handler := newTestHandler(&stubFetcher{}, &stubLister{
		codes: []string{"ACME-2022-001", "ACME-2024-002", "ACME-2022-003", "NOCODE"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp yearsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !reflect.DeepEqual(resp.Years, []int{2024, 2022}) {
		t.Errorf("Years = %v, expected [2024 2022]", resp.Years)
	}
}

func TestHandleYearsUpstreamFailure(t *testing.T) {
	handler := newTestHandler(&stubFetcher{}, &stubLister{err: errors.New("listing down")})

	req := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}
}

func TestHandleSummary(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[int]map[string]any{2024: testPayload(1.2)}}
	handler := newTestHandler(fetcher, &stubLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/summary?year=2024&basis=1000000", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Year != 2024 {
		t.Errorf("Year = %d, expected 2024", resp.Year)
	}
	if resp.Basis != 1000000 {
		t.Errorf("Basis = %v, expected 1000000", resp.Basis)
	}
	if resp.Summary.LTIR.Total != 1.2 {
		t.Errorf("Summary.LTIR.Total = %v, expected 1.2", resp.Summary.LTIR.Total)
	}
	if resp.Adjusted.LTIR.Total != 6.0 {
		t.Errorf("Adjusted.LTIR.Total = %v, expected 6.0", resp.Adjusted.LTIR.Total)
	}
	if resp.Adjusted.SeverityRate.Total != 0.4 {
		t.Errorf("Adjusted.SeverityRate.Total = %v, expected 0.4", resp.Adjusted.SeverityRate.Total)
	}
	if resp.Summary.PropertyDamage.Direct != 20000 {
		t.Errorf("PropertyDamage.Direct = %v, expected 20000", resp.Summary.PropertyDamage.Direct)
	}
}

func TestHandleSummaryDefaultBasis(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[int]map[string]any{2024: testPayload(1.2)}}
	handler := newTestHandler(fetcher, &stubLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/summary?year=2024", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Basis != 200000 {
		t.Errorf("Basis = %v, expected default 200000", resp.Basis)
	}
	if resp.Adjusted.LTIR.Total != 1.2 {
		t.Errorf("Adjusted.LTIR.Total = %v, expected 1.2 under reference basis", resp.Adjusted.LTIR.Total)
	}
}

func TestHandleSummaryBadRequests(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[int]map[string]any{2024: testPayload(1.0)}}
	handler := newTestHandler(fetcher, &stubLister{})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "Missing year", target: "/api/summary", status: http.StatusBadRequest},
		{name: "Malformed year", target: "/api/summary?year=twenty", status: http.StatusBadRequest},
		{name: "Inadmissible basis", target: "/api/summary?year=2024&basis=300000", status: http.StatusBadRequest},
		{name: "Malformed basis", target: "/api/summary?year=2024&basis=big", status: http.StatusBadRequest},
		{name: "Fetch failure", target: "/api/summary?year=1999", status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status = %d, expected %d", rr.Code, tt.status)
			}
		})
	}
}

func TestHandleSeries(t *testing.T) {
	fetcher := &stubFetcher{
		payloads: map[int]map[string]any{
			2021: testPayload(1.0),
			2023: testPayload(0.5),
		},
		errs: map[int]error{2022: errors.New("upstream unavailable")},
	}
	handler := newTestHandler(fetcher, &stubLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/series?years=2023,2021,2022", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp seriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Trend) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(resp.Trend))
	}
	years := []int{resp.Trend[0].Year, resp.Trend[1].Year, resp.Trend[2].Year}
	if !reflect.DeepEqual(years, []int{2021, 2022, 2023}) {
		t.Errorf("trend years = %v, expected ascending [2021 2022 2023]", years)
	}
	if resp.Trend[1].AccidentCount != 0 || resp.Trend[1].PropertyDamage != 0 {
		t.Errorf("degraded 2022 point not zeroed: %+v", resp.Trend[1])
	}
	if !reflect.DeepEqual(resp.DegradedYears, []int{2022}) {
		t.Errorf("DegradedYears = %v, expected [2022]", resp.DegradedYears)
	}
	if len(resp.SafetyIndex) != 3 || len(resp.Detailed) != 3 {
		t.Errorf("expected 3 points in every series, got %d/%d",
			len(resp.SafetyIndex), len(resp.Detailed))
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleSeriesMissingYears(t *testing.T) {
	handler := newTestHandler(&stubFetcher{}, &stubLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := newTestHandler(&stubFetcher{}, &stubLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "test" {
		t.Errorf("version = %s, expected test", resp["version"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&stubFetcher{}, &stubLister{})

	for _, target := range []string{"/api/years", "/api/summary", "/api/series", "/api/version"} {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status = %d, expected 405", target, rr.Code)
		}
	}
}
