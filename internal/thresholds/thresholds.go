// Package thresholds classifies weather samples against the configured
// adverse-condition thresholds. Classification never fails: undefined
// apparent-temperature indices fall back to the raw air temperature.
package thresholds

import (
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// Flags records which adverse conditions a sample meets.
type Flags struct {
	VeryHot   bool `json:"very_hot"`
	VeryCold  bool `json:"very_cold"`
	VeryWindy bool `json:"very_windy"`
	VeryWet   bool `json:"very_wet"`
}

// Any reports whether at least one condition is flagged.
func (f Flags) Any() bool {
	return f.VeryHot || f.VeryCold || f.VeryWindy || f.VeryWet
}

// Count returns the number of flagged conditions.
func (f Flags) Count() int {
	n := 0
	for _, b := range []bool{f.VeryHot, f.VeryCold, f.VeryWindy, f.VeryWet} {
		if b {
			n++
		}
	}
	return n
}

// Flag evaluates a sample against the thresholds in settings. Hot and cold
// use the heat index and wind chill when defined, the air temperature
// otherwise. Wet uses the hourly precipitation rate.
func Flag(s *samples.Sample, settings config.Settings) Flags {
	var f Flags

	if hi, ok := s.HeatIndex(); ok {
		f.VeryHot = hi >= settings.HotHeatIndexC
	} else {
		f.VeryHot = s.TemperatureC >= settings.HotHeatIndexC
	}

	if wc, ok := s.WindChill(); ok {
		f.VeryCold = wc <= settings.ColdWindChillC
	} else {
		f.VeryCold = s.TemperatureC <= settings.ColdWindChillC
	}

	f.VeryWindy = s.WindSpeedMS >= settings.WindMS
	f.VeryWet = s.HourlyPrecipRate() >= settings.RainMMPerHour

	return f
}

// FlagAll classifies every sample in order.
func FlagAll(list []samples.Sample, settings config.Settings) []Flags {
	out := make([]Flags, len(list))
	for i := range list {
		out[i] = Flag(&list[i], settings)
	}
	return out
}
