package precipitation

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// SimulatedSource is a deterministic stand-in for a satellite half-hourly
// precipitation archive. It produces an afternoon-peaked pattern whose
// variability is seeded from the coordinate and timestamp, so repeated calls
// for the same point and day return identical data.
type SimulatedSource struct{}

// NewSimulatedSource returns a simulated half-hourly source.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{}
}

// HalfHourlyDay generates 48 half-hour points covering the UTC day that
// contains day.
func (s *SimulatedSource) HalfHourlyDay(_ context.Context, lat, lon float64, day time.Time) ([]HalfHourlyPoint, error) {
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	points := make([]HalfHourlyPoint, 0, 48)
	for halfHour := 0; halfHour < 48; halfHour++ {
		ts := base.Add(time.Duration(halfHour) * 30 * time.Minute)

		hourOfDay := float64(ts.Hour()) + float64(ts.Minute())/60.0
		baseRate := math.Max(0, 0.5*(1+0.5*math.Pow(hourOfDay-14, 2)/25))

		rng := rand.New(rand.NewSource(ts.Unix() + int64(lat*1000) + int64(lon*1000)))
		variability := 0.5 + rng.Float64()*1.5
		quality := 0.7 + rng.Float64()*0.3

		points = append(points, HalfHourlyPoint{
			Timestamp:     ts,
			RateMMPerHour: baseRate * variability,
			Quality:       int(quality * 100),
		})
	}
	return points, nil
}
