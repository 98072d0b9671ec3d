package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// DefaultBins is the histogram bin count used when callers pass 0.
const DefaultBins = 20

// HistogramBin is one left-closed bin; the final bin of a distribution is
// also closed on the right.
type HistogramBin struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Count      int     `json:"count"`
	Frequency  float64 `json:"frequency"`
}

// Distribution is a binned histogram with descriptive statistics for one
// meteorological parameter.
type Distribution struct {
	Parameter string         `json:"parameter"`
	Unit      string         `json:"unit"`
	Bins      []HistogramBin `json:"bins"`
	Mean      float64        `json:"mean"`
	Median    float64        `json:"median"`
	StdDev    float64        `json:"std_dev"`
	Threshold *float64       `json:"threshold,omitempty"`
}

// binEdges builds n+1 histogram edges over [vmin, vmax]. When a threshold
// lies strictly inside the range, the edges are pinned to it: n/2 bins on
// each side, so the threshold is always an exact edge.
func binEdges(vmin, vmax float64, n int, threshold *float64) []float64 {
	if threshold != nil && vmin < *threshold && *threshold < vmax {
		lower := linspace(vmin, *threshold, n/2+1)
		upper := linspace(*threshold, vmax, n/2+1)
		return append(lower, upper[1:]...)
	}
	return linspace(vmin, vmax, n+1)
}

func linspace(a, b float64, count int) []float64 {
	out := make([]float64, count)
	if count == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(count-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[count-1] = b
	return out
}

// NewDistribution builds a histogram with descriptive statistics over the
// given values. NaN values are dropped first; an empty input produces a
// distribution with no bins and zero statistics.
func NewDistribution(parameter, unit string, values []float64, threshold *float64, nBins int) Distribution {
	if nBins <= 0 {
		nBins = DefaultBins
	}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}

	dist := Distribution{Parameter: parameter, Unit: unit, Threshold: threshold}
	if len(clean) == 0 {
		dist.Bins = []HistogramBin{}
		return dist
	}

	vmin, vmax := clean[0], clean[0]
	for _, v := range clean[1:] {
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}

	edges := binEdges(vmin, vmax, nBins, threshold)
	counts := make([]int, len(edges)-1)
	last := len(counts) - 1
	for _, v := range clean {
		for i := 0; i < len(counts); i++ {
			// Left-closed bins; the final bin also takes its upper edge
			if v >= edges[i] && (v < edges[i+1] || (i == last && v == edges[i+1])) {
				counts[i]++
				break
			}
		}
	}

	total := float64(len(clean))
	dist.Bins = make([]HistogramBin, len(counts))
	for i, c := range counts {
		dist.Bins[i] = HistogramBin{
			LowerBound: edges[i],
			UpperBound: edges[i+1],
			Count:      c,
			Frequency:  float64(c) / total,
		}
	}

	dist.Mean = stat.Mean(clean, nil)
	dist.Median = median(clean)
	if len(clean) > 1 {
		dist.StdDev = stat.StdDev(clean, nil)
	}
	return dist
}

// median returns the middle value of the data, averaging the two central
// values for even lengths. The input is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Distributions builds the standard parameter histograms for a collection:
// temperature, humidity, wind, hourly precipitation rate, heat index, and
// (when any sample has one) wind chill.
func Distributions(col *samples.Collection, settings config.Settings) []Distribution {
	if len(col.Samples) == 0 {
		return []Distribution{}
	}

	n := len(col.Samples)
	temps := make([]float64, n)
	hums := make([]float64, n)
	winds := make([]float64, n)
	precipRates := make([]float64, n)
	heatIndices := make([]float64, n)
	windChills := make([]float64, n)
	anyWindChill := false

	for i := range col.Samples {
		s := &col.Samples[i]
		temps[i] = s.TemperatureC
		hums[i] = s.RelativeHumidity
		winds[i] = s.WindSpeedMS
		precipRates[i] = s.HourlyPrecipRate()

		if hi, ok := s.HeatIndex(); ok {
			heatIndices[i] = hi
		} else {
			heatIndices[i] = math.NaN()
		}
		if wc, ok := s.WindChill(); ok {
			windChills[i] = wc
			anyWindChill = true
		} else {
			windChills[i] = math.NaN()
		}
	}

	windThr := settings.WindMS
	rainThr := settings.RainMMPerHour
	hotThr := settings.HotHeatIndexC
	coldThr := settings.ColdWindChillC

	dists := []Distribution{
		NewDistribution("temperature", "°C", temps, nil, DefaultBins),
		NewDistribution("relative_humidity", "%", hums, nil, DefaultBins),
		NewDistribution("wind_speed", "m/s", winds, &windThr, DefaultBins),
		NewDistribution("precipitation", "mm/h", precipRates, &rainThr, DefaultBins),
		NewDistribution("heat_index", "°C", heatIndices, &hotThr, DefaultBins),
	}
	if anyWindChill {
		dists = append(dists, NewDistribution("wind_chill", "°C", windChills, &coldThr, DefaultBins))
	}
	return dists
}
