// Package yearcode recovers calendar years from accident business codes.
//
// Business codes are dash-delimited identifiers whose exact arrangement of
// company code, site code, year, and sequence number varies across scoping
// conventions (e.g. "ACME-2024-017" or "ACME-PLNT2-2024-017"). Rather than a
// strict grammar per convention, extraction matches the first 4-digit run and
// guards it with a plausible-range check, which tolerates format drift.
package yearcode

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/ehs-tools/safety-dashboard/pkg/constants"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Extract returns the calendar year embedded in a business code, if any. The
// first 4-digit run is taken; runs outside [1900, 2100] are rejected. A code
// with no usable year returns ok == false, never an error.
func Extract(code string) (year int, ok bool) {
	match := yearPattern.FindString(code)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	if year < constants.MinPlausibleYear || year > constants.MaxPlausibleYear {
		return 0, false
	}
	return year, true
}

// Years extracts the distinct valid years from a corpus of business codes,
// returned descending so the most recent year is the natural UI default.
// Codes without a usable year are skipped.
func Years(codes []string) []int {
	seen := make(map[int]struct{})
	for _, code := range codes {
		year, ok := Extract(code)
		if !ok {
			continue
		}
		seen[year] = struct{}{}
	}

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
