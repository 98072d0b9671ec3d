package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/internal/thresholds"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// TrendPoint is one year's exceedance rate for a condition.
type TrendPoint struct {
	Year           int     `json:"year"`
	ExceedanceRate float64 `json:"exceedance_rate"`
}

// Trend is the OLS regression of yearly exceedance rates for one condition
// kind. With fewer than two distinct years no regression is attempted and
// Points is empty.
type Trend struct {
	Kind        Kind         `json:"condition"`
	Points      []TrendPoint `json:"points"`
	Slope       float64      `json:"slope"`
	PValue      float64      `json:"p_value"`
	Significant bool         `json:"significant"`
}

// yearlyRates computes per-year exceedance rates for the kind.
func yearlyRates(col *samples.Collection, kind Kind, settings config.Settings) map[int]float64 {
	exceeded := make(map[int]int)
	totals := make(map[int]int)

	for i := range col.Samples {
		s := &col.Samples[i]
		totals[s.Year]++
		if kind.Matches(thresholds.Flag(s, settings)) {
			exceeded[s.Year]++
		}
	}

	rates := make(map[int]float64, len(totals))
	for year, total := range totals {
		rates[year] = float64(exceeded[year]) / float64(total)
	}
	return rates
}

// olsSlopePValue fits rate against year and maps the slope's t-statistic to
// a stepped p-value. The exact t distribution is deliberately avoided; the
// steps are the standard 99/95/90 percent critical values.
func olsSlopePValue(xs, ys []float64) (float64, float64) {
	n := len(xs)

	xMean := stat.Mean(xs, nil)
	denominator := 0.0
	for _, x := range xs {
		denominator += (x - xMean) * (x - xMean)
	}
	if denominator == 0 {
		return 0.0, 1.0
	}

	alpha, slope := stat.LinearRegression(xs, ys, nil, false)

	sse := 0.0
	for i := range xs {
		r := ys[i] - (alpha + slope*xs[i])
		sse += r * r
	}

	df := n - 2
	if df <= 0 {
		return slope, 1.0
	}

	seSlope := math.Sqrt(sse / float64(df) / denominator)
	if seSlope == 0 {
		// A perfect fit: flat is meaningless, any slope is certain
		if slope == 0 {
			return slope, 1.0
		}
		return slope, 0.0
	}

	absT := math.Abs(slope / seSlope)
	switch {
	case absT > 2.576:
		return slope, 0.01
	case absT > 1.96:
		return slope, 0.05
	case absT > 1.645:
		return slope, 0.1
	default:
		return slope, 0.5
	}
}

// TrendFor computes the yearly exceedance trend for one condition kind.
func TrendFor(col *samples.Collection, kind Kind, settings config.Settings) Trend {
	rates := yearlyRates(col, kind, settings)

	if len(rates) < 2 {
		return Trend{Kind: kind, Points: []TrendPoint{}, PValue: 1.0}
	}

	years := make([]int, 0, len(rates))
	for year := range rates {
		years = append(years, year)
	}
	sort.Ints(years)

	points := make([]TrendPoint, len(years))
	xs := make([]float64, len(years))
	ys := make([]float64, len(years))
	for i, year := range years {
		points[i] = TrendPoint{Year: year, ExceedanceRate: rates[year]}
		xs[i] = float64(year)
		ys[i] = rates[year]
	}

	slope, pValue := olsSlopePValue(xs, ys)
	return Trend{
		Kind:        kind,
		Points:      points,
		Slope:       slope,
		PValue:      pValue,
		Significant: pValue < 0.05,
	}
}

// Trends computes trends for every condition kind.
func Trends(col *samples.Collection, settings config.Settings) []Trend {
	out := make([]Trend, 0, len(Kinds))
	for _, kind := range Kinds {
		out = append(out, TrendFor(col, kind, settings))
	}
	return out
}
