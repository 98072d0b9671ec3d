package restserver

import (
	"github.com/chrissnell/outdoorrisk/internal/analysis"
	"github.com/chrissnell/outdoorrisk/internal/samples"
)

// RiskResponse is the full risk-assessment payload. Distributions, Trends,
// and CoverageReport are only present at detail=full.
type RiskResponse struct {
	Request          RequestEcho               `json:"request"`
	Conditions       map[string]ConditionBlock `json:"conditions"`
	SampleStatistics SampleStatistics          `json:"sample_statistics"`
	Thresholds       ThresholdBlock            `json:"thresholds"`
	Distributions    []analysis.Distribution   `json:"distributions,omitempty"`
	Trends           []analysis.Trend          `json:"trends,omitempty"`
	CoverageReport   *samples.CoverageReport   `json:"coverage_report,omitempty"`
}

// RequestEcho restates the resolved query envelope.
type RequestEcho struct {
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	Date       string  `json:"date"`
	Hour       int     `json:"hour"`
	WindowDays int     `json:"window_days"`
	Timezone   string  `json:"timezone"`
	Detail     string  `json:"detail"`
}

// ConditionBlock is the per-kind probability summary.
type ConditionBlock struct {
	Probability        float64            `json:"probability"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	PositiveSamples    int                `json:"positive_samples"`
}

// ConfidenceInterval is the exact binomial interval for a condition.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
	Width float64 `json:"width"`
}

// SampleStatistics summarizes the collection behind the probabilities.
type SampleStatistics struct {
	TotalSamples        int    `json:"total_samples"`
	YearsWithData       int    `json:"years_with_data"`
	TotalYearsRequested int    `json:"total_years_requested"`
	CoverageYears       int    `json:"coverage_years"`
	CoverageAdequate    bool   `json:"coverage_adequate"`
	Timezone            string `json:"timezone"`
}

// ThresholdBlock echoes the thresholds the flags were computed against.
type ThresholdBlock struct {
	HotHeatIndexC  float64 `json:"hot_heat_index_c"`
	ColdWindChillC float64 `json:"cold_wind_chill_c"`
	WindMS         float64 `json:"wind_ms"`
	RainMMPerHour  float64 `json:"rain_mm_per_h"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}
