// Package constants provides shared constants for the safety-dashboard application.
package constants

// Indicator constants
const (
	// ReferenceBasisHours is the exposure-hours basis upstream rates are
	// already expressed in (roughly 100 full-time workers per year).
	ReferenceBasisHours = 200000.0

	// MillionHoursBasis is the alternate exposure-hours basis selectable
	// from the dashboard.
	MillionHoursBasis = 1000000.0

	// SeverityRateBasisHours is the fixed basis for the severity rate
	// (lost days per 1,000 exposure hours). It never rescales.
	SeverityRateBasisHours = 1000.0

	// DamageUnitFactor converts upstream thousand-unit monetary amounts
	// into base currency units.
	DamageUnitFactor = 1000.0
)

// Year extraction constants
const (
	// MinPlausibleYear is the lower inclusive bound for years recovered
	// from accident business codes.
	MinPlausibleYear = 1900

	// MaxPlausibleYear is the upper inclusive bound for years recovered
	// from accident business codes.
	MaxPlausibleYear = 2100
)

// Formatting constants
const (
	// RateDecimals is the fixed decimal precision for displayed rates
	RateDecimals = 2

	// CurrencyDecimals is the fixed decimal precision for monetary values
	CurrencyDecimals = 2
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the dashboard API
	DefaultServerAddress = ":8080"

	// DefaultMaxResponseBytes caps how much of an upstream response body is read (1 MB)
	DefaultMaxResponseBytes int64 = 1024 * 1024
)

// Upstream client defaults
const (
	// DefaultUpstreamTimeoutSeconds is the per-request timeout toward the EHS service
	DefaultUpstreamTimeoutSeconds = 10

	// DefaultRetryMaxElapsedSeconds bounds the exponential retry window for one fetch
	DefaultRetryMaxElapsedSeconds = 15
)
