package samples

import (
	"time"

	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// Collection holds all samples gathered for one request, with the query
// envelope and coverage metadata.
type Collection struct {
	Samples []Sample

	TargetLatitude  float64
	TargetLongitude float64
	TargetDate      time.Time
	TargetHour      int
	WindowDays      int
	BaselineStart   int
	BaselineEnd     int

	TotalYearsRequested int
	YearsWithData       int
	TotalSamples        int
	CoverageAdequate    bool

	Timezone string
}

// CoverageYears returns the span of years covered by the samples, inclusive.
// Empty collections span zero years.
func (c *Collection) CoverageYears() int {
	if len(c.Samples) == 0 {
		return 0
	}
	minYear, maxYear := c.Samples[0].Year, c.Samples[0].Year
	for _, s := range c.Samples[1:] {
		if s.Year < minYear {
			minYear = s.Year
		}
		if s.Year > maxYear {
			maxYear = s.Year
		}
	}
	return maxYear - minYear + 1
}

// CoverageReport describes how well the collection meets the configured
// coverage minima, with per-year and per-season sample distributions.
type CoverageReport struct {
	TotalSamples        int            `json:"total_samples"`
	YearsWithData       int            `json:"years_with_data"`
	TotalYearsRequested int            `json:"total_years_requested"`
	YearsCoverageRatio  float64        `json:"years_coverage_ratio"`
	SampleAdequacyRatio float64        `json:"sample_adequacy_ratio"`
	MeetsYears          bool           `json:"meets_years"`
	MeetsSamples        bool           `json:"meets_samples"`
	Adequate            bool           `json:"adequate"`
	YearlyCounts        map[int]int    `json:"yearly_counts"`
	SeasonalCounts      map[string]int `json:"seasonal_counts"`
}

// Coverage evaluates the collection against the coverage minima in settings.
func (c *Collection) Coverage(settings config.Settings) CoverageReport {
	report := CoverageReport{
		TotalSamples:        c.TotalSamples,
		YearsWithData:       c.YearsWithData,
		TotalYearsRequested: c.TotalYearsRequested,
		MeetsYears:          c.YearsWithData >= settings.MinYears,
		MeetsSamples:        c.TotalSamples >= settings.MinSamples,
		Adequate:            c.CoverageAdequate,
		YearlyCounts:        make(map[int]int),
		SeasonalCounts:      make(map[string]int),
	}
	if c.TotalYearsRequested > 0 {
		report.YearsCoverageRatio = float64(c.YearsWithData) / float64(c.TotalYearsRequested)
	}
	if settings.MinSamples > 0 {
		report.SampleAdequacyRatio = float64(c.TotalSamples) / float64(settings.MinSamples)
	}

	for _, s := range c.Samples {
		report.YearlyCounts[s.Year]++
		report.SeasonalCounts[season(s.TimestampLocal.Month())]++
	}
	return report
}

func season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}
