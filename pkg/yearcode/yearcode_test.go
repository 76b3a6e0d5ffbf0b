package yearcode

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
		ok       bool
	}{
		{
			name:     "Company-scoped code",
			code:     "ACME-2024-017",
			expected: 2024,
			ok:       true,
		},
		{
			name:     "Company and site scoped code",
			code:     "ACME-PLNT2-2023-104",
			expected: 2023,
			ok:       true,
		},
		{
			name:     "Year below range",
			code:     "X-1899-001",
			expected: 0,
			ok:       false,
		},
		{
			name:     "Year above range",
			code:     "X-2101-001",
			expected: 0,
			ok:       false,
		},
		{
			name:     "Lower bound inclusive",
			code:     "X-1900-001",
			expected: 1900,
			ok:       true,
		},
		{
			name:     "Upper bound inclusive",
			code:     "X-2100-001",
			expected: 2100,
			ok:       true,
		},
		{
			name:     "No digits at all",
			code:     "NOCODE",
			expected: 0,
			ok:       false,
		},
		{
			name:     "Too few digits",
			code:     "A-123-B",
			expected: 0,
			ok:       false,
		},
		{
			name:     "Empty string",
			code:     "",
			expected: 0,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := Extract(tt.code)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, expected %v", tt.code, ok, tt.ok)
			}
			if year != tt.expected {
				t.Errorf("Extract(%q) = %d, expected %d", tt.code, year, tt.expected)
			}
		})
	}
}

func TestYears(t *testing.T) {
	tests := []struct {
		name     string
		codes    []string
		expected []int
	}{
		{
			name: "Duplicates collapse and order is descending",
			codes: []string{
				"ACME-2022-001",
				"ACME-2024-002",
				"ACME-2022-003",
				"ACME-2023-004",
			},
			expected: []int{2024, 2023, 2022},
		},
		{
			name: "Unusable codes are skipped",
			codes: []string{
				"NOCODE",
				"X-1899-001",
				"ACME-2021-001",
			},
			expected: []int{2021},
		},
		{
			name:     "Empty corpus",
			codes:    nil,
			expected: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Years(tt.codes); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Years(%v) = %v, expected %v", tt.codes, got, tt.expected)
			}
		})
	}
}
