// Package geotime resolves IANA timezones from coordinates and provides the
// day-of-year arithmetic used by the sample collector.
package geotime

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"

	"github.com/chrissnell/outdoorrisk/internal/riskerr"
)

var (
	finderOnce sync.Once
	finder     tzf.F
	finderErr  error

	// Coordinate lookups are deterministic, so a racing second writer for the
	// same key stores the same value.
	zoneCache sync.Map // "lat,lon" -> IANA string
)

func getFinder() (tzf.F, error) {
	finderOnce.Do(func() {
		finder, finderErr = tzf.NewDefaultFinder()
	})
	return finder, finderErr
}

// ResolveTZ resolves the IANA timezone name for a coordinate, with
// memoisation keyed by the exact coordinate pair.
func ResolveTZ(lat, lon float64) (string, error) {
	if lat < -90 || lat > 90 {
		return "", riskerr.New(riskerr.KindValidation, "invalid latitude %v: must be -90 to 90", lat)
	}
	if lon < -180 || lon > 180 {
		return "", riskerr.New(riskerr.KindValidation, "invalid longitude %v: must be -180 to 180", lon)
	}

	key := fmt.Sprintf("%v,%v", lat, lon)
	if cached, ok := zoneCache.Load(key); ok {
		return cached.(string), nil
	}

	f, err := getFinder()
	if err != nil {
		return "", riskerr.Wrap(riskerr.KindInternal, err, "timezone finder initialization failed")
	}

	zone := f.GetTimezoneName(lon, lat)
	if zone == "" {
		return "", riskerr.New(riskerr.KindValidation, "no timezone found for coordinates (%v, %v)", lat, lon)
	}

	zoneCache.Store(key, zone)
	return zone, nil
}

// ToLocal converts a UTC instant to civil time in the given IANA zone.
// The input must be in UTC.
func ToLocal(tsUTC time.Time, zone string) (time.Time, error) {
	if tsUTC.Location() != time.UTC {
		return time.Time{}, fmt.Errorf("input timestamp must be in UTC, got %v", tsUTC.Location())
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
	}
	return tsUTC.In(loc), nil
}

// ParseDate parses a strict YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, riskerr.Wrap(riskerr.KindValidation, err, "invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DayOfYear returns the 1-based day of year for the given date.
func DayOfYear(d time.Time) int {
	return d.YearDay()
}

// YearLength returns 365 or 366 for the given year.
func YearLength(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DOYWindow returns the sorted, de-duplicated set of day-of-year values in
// target±w, wrapping across the year boundary on a 365-day cycle (DOY 3 with
// w=5 includes 363..365 and 1..8).
func DOYWindow(target, w int) []int {
	seen := make(map[int]bool)
	for offset := -w; offset <= w; offset++ {
		doy := ((target-1+offset)%365+365)%365 + 1
		seen[doy] = true
	}

	window := make([]int, 0, len(seen))
	for doy := range seen {
		window = append(window, doy)
	}
	sort.Ints(window)
	return window
}
