// Package samples collects historical weather samples around a target
// day-of-year at a target local hour, across a baseline of years.
package samples

import (
	"time"

	"github.com/chrissnell/outdoorrisk/internal/precipitation"
	"github.com/chrissnell/outdoorrisk/pkg/apparent"
)

// Sample is one day's weather at the target location. A sample only exists
// when temperature, humidity, and wind were all observed; missing
// precipitation is recorded as zero. PrecipHourlyMM is nil unless an hourly
// precipitation source contributed.
type Sample struct {
	TimestampUTC   time.Time
	TimestampLocal time.Time
	Year           int
	DOY            int
	Latitude       float64
	Longitude      float64

	TemperatureC     float64
	RelativeHumidity float64
	WindSpeedMS      float64
	PrecipDailyMM    float64
	PrecipHourlyMM   *float64
	PrecipSource     string
}

// Precipitation source label for samples built from the daily archive alone.
const SourceReanalysis = "reanalysis"

// HourlyPrecipRate returns the sample's precipitation rate in mm/h: the
// hourly observation when present, otherwise the daily total spread
// uniformly over 24 hours.
func (s *Sample) HourlyPrecipRate() float64 {
	if s.PrecipHourlyMM != nil {
		return *s.PrecipHourlyMM
	}
	return s.PrecipDailyMM / 24.0
}

// HeatIndex returns the sample's heat index, when defined.
func (s *Sample) HeatIndex() (float64, bool) {
	return apparent.HeatIndex(s.TemperatureC, s.RelativeHumidity)
}

// WindChill returns the sample's wind chill, when defined.
func (s *Sample) WindChill() (float64, bool) {
	return apparent.WindChill(s.TemperatureC, s.WindSpeedMS)
}

// FeelsLike returns the apparent temperature for the sample.
func (s *Sample) FeelsLike() float64 {
	return apparent.FeelsLike(s.TemperatureC, s.RelativeHumidity, s.WindSpeedMS)
}

// attachHourly records an hourly precipitation observation on the sample.
func (s *Sample) attachHourly(hp *precipitation.HourlyPrecip) {
	if hp == nil {
		return
	}
	total := hp.TotalMM
	s.PrecipHourlyMM = &total
	s.PrecipSource = hp.Source
}
