// Package config holds the immutable runtime settings for the risk
// assessment service: condition thresholds, coverage minima, transport
// policy, and baseline defaults.
package config

import (
	"fmt"
	"time"
)

// Settings is an immutable value object. A copy is taken per request scope;
// nothing in the pipeline mutates it after construction.
type Settings struct {
	// Condition thresholds. Units are encoded in the field names.
	HotHeatIndexC  float64 `yaml:"threshold_hot_hi_c"`
	ColdWindChillC float64 `yaml:"threshold_cold_wc_c"`
	WindMS         float64 `yaml:"threshold_wind_ms"`
	RainMMPerHour  float64 `yaml:"threshold_rain_mm_per_h"`

	// Coverage gate.
	MinYears        int  `yaml:"coverage_min_years"`
	MinSamples      int  `yaml:"coverage_min_samples"`
	EnforceCoverage bool `yaml:"coverage_enforce"`

	// Transport policy.
	ConnectTimeoutS int `yaml:"timeout_connect_s"`
	ReadTimeoutS    int `yaml:"timeout_read_s"`
	Retries         int `yaml:"retries"`

	// Baseline defaults.
	BaselineStartYear int `yaml:"baseline_start_year"`
	BaselineEndYear   int `yaml:"baseline_end_year"`
	DefaultWindowDays int `yaml:"default_window_days"`

	// Upstream endpoints and sources.
	ReanalysisBaseURL    string `yaml:"reanalysis_base_url"`
	EnableHalfHourly     bool   `yaml:"enable_half_hourly_precip"`
	EnablePrecipFallback bool   `yaml:"enable_precip_fallback"`

	// Optional on-disk response cache. Empty path disables it.
	CachePath    string `yaml:"cache_path"`
	CacheTTLDays int    `yaml:"cache_ttl_days"`

	// HTTP boundary.
	ListenAddr     string   `yaml:"listen_addr"`
	HTTPPort       int      `yaml:"http_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the canonical settings.
func Default() Settings {
	return Settings{
		HotHeatIndexC:  41.0,
		ColdWindChillC: -10.0,
		WindMS:         10.8,
		RainMMPerHour:  4.0,

		MinYears:        15,
		MinSamples:      8,
		EnforceCoverage: true,

		ConnectTimeoutS: 10,
		ReadTimeoutS:    30,
		Retries:         3,

		BaselineStartYear: 2001,
		BaselineEndYear:   2023,
		DefaultWindowDays: 7,

		ReanalysisBaseURL:    "https://power.larc.nasa.gov",
		EnableHalfHourly:     true,
		EnablePrecipFallback: true,

		CachePath:    "",
		CacheTTLDays: 30,

		ListenAddr: "0.0.0.0",
		HTTPPort:   8080,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:4173",
		},
	}
}

// Validate checks settings invariants that would otherwise surface as
// confusing failures deep in the pipeline.
func (s Settings) Validate() error {
	if s.BaselineStartYear > s.BaselineEndYear {
		return fmt.Errorf("baseline_start_year %d is after baseline_end_year %d", s.BaselineStartYear, s.BaselineEndYear)
	}
	if s.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", s.Retries)
	}
	if s.MinYears < 1 || s.MinSamples < 1 {
		return fmt.Errorf("coverage minima must be positive (min_years=%d, min_samples=%d)", s.MinYears, s.MinSamples)
	}
	if s.DefaultWindowDays < 1 || s.DefaultWindowDays > 30 {
		return fmt.Errorf("default_window_days %d out of range [1,30]", s.DefaultWindowDays)
	}
	return nil
}

// ConnectTimeout returns the connection timeout as a duration.
func (s Settings) ConnectTimeout() time.Duration {
	return time.Duration(s.ConnectTimeoutS) * time.Second
}

// ReadTimeout returns the read timeout as a duration.
func (s Settings) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutS) * time.Second
}

// CacheTTL returns the cache TTL as a duration.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLDays) * 24 * time.Hour
}
