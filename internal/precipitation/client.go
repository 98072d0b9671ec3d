// Package precipitation fuses a half-hourly satellite precipitation source
// with the daily reanalysis total, producing per-local-hour precipitation
// with a quality score and source label.
package precipitation

import (
	"context"
	"sort"
	"time"

	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/reanalysis"
	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// Source labels carried on every hourly value.
const (
	SourceHalfHourly = "half-hourly"
	SourceFallback   = "half-hourly-fallback"
)

// fallbackQuality is the fixed quality score assigned to hours synthesised
// from a daily total. Half-hourly retrievals score higher.
const fallbackQuality = 0.8

// HalfHourlyPoint is a single half-hour precipitation retrieval. Timestamps
// are UTC; Quality is a 0-100 flag.
type HalfHourlyPoint struct {
	Timestamp     time.Time
	RateMMPerHour float64
	Quality       int
}

// HalfHourlySource supplies half-hourly precipitation points for the UTC day
// containing the given instant, in any order. Implementations may simulate
// when no real archive is reachable.
type HalfHourlySource interface {
	HalfHourlyDay(ctx context.Context, lat, lon float64, day time.Time) ([]HalfHourlyPoint, error)
}

// HourlyPrecip is precipitation aggregated to one civil hour in the target
// zone.
type HourlyPrecip struct {
	Hour             int     // local hour of day, 0-23
	TotalMM          float64 // accumulated precipitation in the hour
	AvgRateMMPerHour float64
	DataPoints       int
	Quality          float64 // 0-1
	Source           string
}

// Client resolves hourly precipitation, preferring the half-hourly source and
// falling back to a uniform spread of the reanalysis daily total.
type Client struct {
	source   HalfHourlySource
	daily    *reanalysis.Client
	settings config.Settings
}

// NewClient builds a precipitation client. source may be nil when the
// half-hourly path is disabled.
func NewClient(settings config.Settings, source HalfHourlySource, daily *reanalysis.Client) *Client {
	return &Client{
		source:   source,
		daily:    daily,
		settings: settings,
	}
}

// HourlyPrecipitation returns per-local-hour precipitation for the UTC day
// containing date. The result is sorted by hour and may be empty when every
// enabled source fails.
func (c *Client) HourlyPrecipitation(ctx context.Context, lat, lon float64, date time.Time, zone string) ([]HourlyPrecip, error) {
	if lat < -90 || lat > 90 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid latitude %v: must be -90 to 90", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid longitude %v: must be -180 to 180", lon)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, riskerr.New(riskerr.KindValidation, "invalid timezone %q", zone)
	}

	if c.settings.EnableHalfHourly && c.source != nil {
		points, err := c.source.HalfHourlyDay(ctx, lat, lon, date)
		if err != nil {
			log.Warnf("half-hourly precipitation retrieval failed for (%v, %v): %v", lat, lon, err)
		} else if len(points) > 0 {
			return aggregateHourly(points, loc), nil
		} else {
			log.Warnf("half-hourly precipitation source returned no points for (%v, %v)", lat, lon)
		}
	}

	if c.settings.EnablePrecipFallback && c.daily != nil {
		hourly, err := c.dailyFallback(ctx, lat, lon, date)
		if err != nil {
			log.Warnf("daily precipitation fallback failed for (%v, %v): %v", lat, lon, err)
		} else if hourly != nil {
			return hourly, nil
		}
	}

	log.Errorf("all precipitation sources failed for (%v, %v) on %s", lat, lon, date.Format("2006-01-02"))
	return []HourlyPrecip{}, nil
}

// ForHour returns the entry matching the given local hour, if present.
func (c *Client) ForHour(ctx context.Context, lat, lon float64, date time.Time, hour int, zone string) (*HourlyPrecip, error) {
	hourly, err := c.HourlyPrecipitation(ctx, lat, lon, date, zone)
	if err != nil {
		return nil, err
	}
	for i := range hourly {
		if hourly[i].Hour == hour {
			return &hourly[i], nil
		}
	}
	return nil, nil
}

// aggregateHourly buckets half-hourly points by civil hour in loc. Each point
// contributes rate·0.5h of accumulation; the hour's quality is the mean of
// contributing flags.
func aggregateHourly(points []HalfHourlyPoint, loc *time.Location) []HourlyPrecip {
	type bucket struct {
		totalMM    float64
		qualitySum float64
		count      int
	}
	buckets := make(map[int]*bucket)

	for _, p := range points {
		rate := p.RateMMPerHour
		if rate < 0 {
			log.Warnf("negative precipitation rate %v clamped to 0", rate)
			rate = 0
		}

		hour := p.Timestamp.In(loc).Hour()
		b := buckets[hour]
		if b == nil {
			b = &bucket{}
			buckets[hour] = b
		}
		b.totalMM += rate * 0.5
		b.qualitySum += float64(p.Quality) / 100.0
		b.count++
	}

	hours := make([]int, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	result := make([]HourlyPrecip, 0, len(hours))
	for _, h := range hours {
		b := buckets[h]
		result = append(result, HourlyPrecip{
			Hour:             h,
			TotalMM:          b.totalMM,
			AvgRateMMPerHour: b.totalMM, // mm accumulated over one hour is the mean mm/h rate
			DataPoints:       b.count,
			Quality:          b.qualitySum / float64(b.count),
			Source:           SourceHalfHourly,
		})
	}
	return result
}

// dailyFallback spreads the reanalysis daily total uniformly over 24 hours.
// Returns nil (without error) when the daily total is unavailable.
func (c *Client) dailyFallback(ctx context.Context, lat, lon float64, date time.Time) ([]HourlyPrecip, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	series, err := c.daily.DailySeries(ctx, lat, lon, day, day, []string{reanalysis.ParamPrecipDaily})
	if err != nil {
		return nil, err
	}

	dailyMM, ok := series[reanalysis.ParamPrecipDaily][day.Format("20060102")]
	if !ok {
		return nil, nil
	}

	hourlyRate := dailyMM / 24.0
	result := make([]HourlyPrecip, 24)
	for hour := 0; hour < 24; hour++ {
		result[hour] = HourlyPrecip{
			Hour:             hour,
			TotalMM:          hourlyRate,
			AvgRateMMPerHour: hourlyRate,
			DataPoints:       1,
			Quality:          fallbackQuality,
			Source:           SourceFallback,
		}
	}
	log.Infof("using daily precipitation fallback for (%v, %v): %.2f mm/day", lat, lon, dailyMM)
	return result, nil
}
