// Package server exposes the dashboard HTTP API: the year set recovered from
// accident codes, the current-year summary card, and the multi-year chart
// series.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ehs-tools/safety-dashboard/internal/indicator"
	"github.com/ehs-tools/safety-dashboard/internal/series"
	"github.com/ehs-tools/safety-dashboard/internal/summary"
	"github.com/ehs-tools/safety-dashboard/pkg/yearcode"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CodeLister supplies the accident business identifier corpus; paging and
// filtering are upstream concerns.
type CodeLister interface {
	FetchAccidentCodes(ctx context.Context) ([]string, error)
}

type handler struct {
	logger       *zap.Logger
	aggregator   *series.Aggregator
	codes        CodeLister
	defaultBasis indicator.Basis
	version      string
}

// NewHandler constructs the HTTP handler that serves the dashboard API.
func NewHandler(logger *zap.Logger, fetcher series.SummaryFetcher, codes CodeLister, defaultBasis indicator.Basis, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !defaultBasis.Valid() {
		defaultBasis = indicator.BasisReference
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		aggregator:   series.NewAggregator(fetcher, logger),
		codes:        codes,
		defaultBasis: defaultBasis,
		version:      trimmedVersion,
	}

	mux := http.NewServeMux()

	// Selectable year set for the history and chart views
	mux.HandleFunc("/api/years", h.handleYears)

	// Dashboard card: normalized summary plus basis-adjusted variant
	mux.HandleFunc("/api/summary", h.handleSummary)

	// Chart series: trend, safety-index, detailed
	mux.HandleFunc("/api/series", h.handleSeries)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type yearsResponse struct {
	Years []int `json:"years"`
}

type summaryResponse struct {
	Year     int                 `json:"year"`
	Basis    float64             `json:"basis"`
	Summary  summary.YearSummary `json:"summary"`
	Adjusted summary.YearSummary `json:"adjusted"`
}

type seriesResponse struct {
	Basis         float64              `json:"basis"`
	Trend         []series.TrendPoint  `json:"trend"`
	SafetyIndex   []series.IndexPoint  `json:"safetyIndex"`
	Detailed      []series.DetailPoint `json:"detailed"`
	DegradedYears []int                `json:"degradedYears,omitempty"`
	Duration      string               `json:"duration"`
}

func (h *handler) handleYears(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	codes, err := h.codes.FetchAccidentCodes(r.Context())
	if err != nil {
		h.respondError(w, http.StatusBadGateway,
			fmt.Sprintf("failed to list accident codes: %v", err), "server.handleYears")
		return
	}

	h.writeJSON(w, http.StatusOK, yearsResponse{Years: yearcode.Years(codes)})
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	year, err := parseYearParam(r.URL.Query().Get("year"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleSummary")
		return
	}

	basis, err := h.parseBasisParam(r.URL.Query().Get("basis"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleSummary")
		return
	}

	result, err := h.aggregator.Year(r.Context(), year, basis)
	if err != nil {
		h.respondError(w, http.StatusBadGateway,
			fmt.Sprintf("failed to load summary for %d: %v", year, err), "server.handleSummary")
		return
	}

	h.writeJSON(w, http.StatusOK, summaryResponse{
		Year:     year,
		Basis:    float64(basis),
		Summary:  result.Summary,
		Adjusted: result.Adjusted,
	})
}

func (h *handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	years, err := parseYearsParam(r.URL.Query().Get("years"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleSeries")
		return
	}

	basis, err := h.parseBasisParam(r.URL.Query().Get("basis"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleSeries")
		return
	}

	results, err := h.aggregator.Collect(r.Context(), years, basis)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleSeries")
		return
	}

	h.writeJSON(w, http.StatusOK, seriesResponse{
		Basis:         float64(basis),
		Trend:         series.Trend(results),
		SafetyIndex:   series.SafetyIndex(results),
		Detailed:      series.Detailed(results),
		DegradedYears: series.DegradedYears(results),
		Duration:      time.Since(start).String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func parseYearParam(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("missing required parameter: year")
	}
	year, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", value)
	}
	return year, nil
}

// parseYearsParam parses a comma-separated year list (e.g. "2021,2022,2023").
func parseYearsParam(value string) ([]int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("missing required parameter: years")
	}

	parts := strings.Split(trimmed, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := parseYearParam(part)
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}

func (h *handler) parseBasisParam(value string) (indicator.Basis, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return h.defaultBasis, nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid basis %q", value)
	}
	return indicator.ParseBasis(parsed)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("dashboard request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
