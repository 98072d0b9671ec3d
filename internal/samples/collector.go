package samples

import (
	"context"
	"sort"
	"time"

	"github.com/chrissnell/outdoorrisk/internal/geotime"
	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/precipitation"
	"github.com/chrissnell/outdoorrisk/internal/reanalysis"
	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// DefaultWindowDays is the window applied when a request leaves it unset.
const DefaultWindowDays = 15

// Request is the envelope for one collection run. Zero values for WindowDays
// and the baseline years fall back to DefaultWindowDays and the configured
// baseline.
type Request struct {
	Latitude      float64
	Longitude     float64
	TargetDate    string // YYYY-MM-DD
	TargetHour    int
	WindowDays    int
	BaselineStart int
	BaselineEnd   int
}

// Collector gathers weather samples from the reanalysis archive, optionally
// enriched with hourly precipitation.
type Collector struct {
	settings config.Settings
	daily    *reanalysis.Client
	precip   *precipitation.Client
}

// NewCollector builds a collector. precip may be nil; samples then carry the
// daily precipitation only.
func NewCollector(settings config.Settings, daily *reanalysis.Client, precip *precipitation.Client) *Collector {
	return &Collector{
		settings: settings,
		daily:    daily,
		precip:   precip,
	}
}

// Collect gathers samples over target DOY ± window at the target local hour
// across the baseline years. Years that fail to fetch are skipped; the whole
// collection fails only when every year fails. When coverage enforcement is
// on, an inadequate collection is an error.
func (c *Collector) Collect(ctx context.Context, req Request) (*Collection, error) {
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid latitude %v: must be -90 to 90", req.Latitude)
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid longitude %v: must be -180 to 180", req.Longitude)
	}
	if req.TargetHour < 0 || req.TargetHour > 23 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid target hour %d: must be 0-23", req.TargetHour)
	}
	if req.WindowDays < 0 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid window %d: must be >= 0", req.WindowDays)
	}

	window := req.WindowDays
	if window == 0 {
		window = DefaultWindowDays
	}
	baselineStart := req.BaselineStart
	if baselineStart == 0 {
		baselineStart = c.settings.BaselineStartYear
	}
	baselineEnd := req.BaselineEnd
	if baselineEnd == 0 {
		baselineEnd = c.settings.BaselineEndYear
	}
	if baselineStart > baselineEnd {
		return nil, riskerr.New(riskerr.KindValidation, "invalid baseline years: %d > %d", baselineStart, baselineEnd)
	}

	targetDate, err := geotime.ParseDate(req.TargetDate)
	if err != nil {
		return nil, err
	}
	targetDOY := geotime.DayOfYear(targetDate)

	zone, err := geotime.ResolveTZ(req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, riskerr.Wrap(riskerr.KindInternal, err, "resolved timezone %q failed to load", zone)
	}
	log.Infof("resolved timezone for (%v, %v): %s", req.Latitude, req.Longitude, zone)

	totalYears := baselineEnd - baselineStart + 1
	var all []Sample
	yearsWithData := 0
	failedYears := 0
	var lastErr error

	for year := baselineStart; year <= baselineEnd; year++ {
		yearSamples, err := c.collectYear(ctx, req, year, targetDOY, window, loc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, riskerr.Wrap(riskerr.KindUpstream, ctx.Err(), "collection cancelled")
			}
			log.Warnf("failed to collect samples for year %d: %v", year, err)
			failedYears++
			lastErr = err
			continue
		}
		if len(yearSamples) == 0 {
			log.Warnf("year %d: no samples collected", year)
			continue
		}
		all = append(all, yearSamples...)
		yearsWithData++
		log.Debugf("year %d: collected %d samples", year, len(yearSamples))
	}

	if failedYears == totalYears {
		return nil, riskerr.Wrap(riskerr.KindUpstream, lastErr, "every baseline year failed to fetch")
	}

	adequate := yearsWithData >= c.settings.MinYears && len(all) >= c.settings.MinSamples
	if !adequate && c.settings.EnforceCoverage {
		return nil, riskerr.New(riskerr.KindInsufficientCoverage,
			"insufficient coverage: %d years (need %d), %d samples (need %d)",
			yearsWithData, c.settings.MinYears, len(all), c.settings.MinSamples)
	}

	collection := &Collection{
		Samples:             all,
		TargetLatitude:      req.Latitude,
		TargetLongitude:     req.Longitude,
		TargetDate:          targetDate,
		TargetHour:          req.TargetHour,
		WindowDays:          window,
		BaselineStart:       baselineStart,
		BaselineEnd:         baselineEnd,
		TotalYearsRequested: totalYears,
		YearsWithData:       yearsWithData,
		TotalSamples:        len(all),
		CoverageAdequate:    adequate,
		Timezone:            zone,
	}

	log.Infof("sample collection complete: %d samples from %d/%d years, coverage adequate: %v",
		len(all), yearsWithData, totalYears, adequate)
	return collection, nil
}

// collectYear fetches one year's window of daily data and builds samples for
// every day with the three required sensors. The window is clamped to the
// year's own boundaries rather than wrapped into its neighbours.
func (c *Collector) collectYear(ctx context.Context, req Request, year, targetDOY, window int, loc *time.Location) ([]Sample, error) {
	startDOY := targetDOY - window
	if startDOY < 1 {
		startDOY = 1
	}
	endDOY := targetDOY + window
	if yl := geotime.YearLength(year); endDOY > yl {
		endDOY = yl
	}

	jan1 := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	startDate := jan1.AddDate(0, 0, startDOY-1)
	endDate := jan1.AddDate(0, 0, endDOY-1)

	series, err := c.daily.DailySeries(ctx, req.Latitude, req.Longitude, startDate, endDate, reanalysis.RequiredParams)
	if err != nil {
		return nil, err
	}

	temp := series[reanalysis.ParamTemperature]
	rh := series[reanalysis.ParamHumidity]
	wind := series[reanalysis.ParamWindSpeed]
	prcp := series[reanalysis.ParamPrecipDaily]

	dateKeys := make([]string, 0, len(temp))
	for k := range temp {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)

	samples := make([]Sample, 0, len(dateKeys))
	for _, key := range dateKeys {
		day, err := time.Parse("20060102", key)
		if err != nil {
			log.Warnf("skipping malformed date key %q: %v", key, err)
			continue
		}

		t, okT := temp[key]
		h, okH := rh[key]
		w, okW := wind[key]
		if !okT || !okH || !okW {
			log.Debugf("skipping %s: missing required sensor", key)
			continue
		}
		// Missing precipitation alone is common in dry periods
		p := prcp[key]

		tsLocal := time.Date(day.Year(), day.Month(), day.Day(), req.TargetHour, 0, 0, 0, loc)
		sample := Sample{
			TimestampUTC:     tsLocal.UTC(),
			TimestampLocal:   tsLocal,
			Year:             day.Year(),
			DOY:              day.YearDay(),
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			TemperatureC:     t,
			RelativeHumidity: h,
			WindSpeedMS:      w,
			PrecipDailyMM:    p,
			PrecipSource:     SourceReanalysis,
		}

		if c.precip != nil && c.settings.EnableHalfHourly {
			hp, err := c.precip.ForHour(ctx, req.Latitude, req.Longitude, day, req.TargetHour, loc.String())
			if err != nil {
				log.Debugf("hourly precipitation unavailable for %s: %v", key, err)
			} else {
				sample.attachHourly(hp)
			}
		}

		samples = append(samples, sample)
	}
	return samples, nil
}
