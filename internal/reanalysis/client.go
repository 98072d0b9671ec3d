// Package reanalysis fetches daily point meteorology from the NASA POWER
// reanalysis archive, with retries, response sanitation, and an optional
// on-disk cache.
package reanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chrissnell/outdoorrisk/internal/cache"
	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// Daily parameter identifiers used for risk calculations.
const (
	ParamTemperature = "T2M"         // air temperature at 2m (°C)
	ParamHumidity    = "RH2M"        // relative humidity at 2m (%)
	ParamWindSpeed   = "WS10M"       // wind speed at 10m (m/s)
	ParamPrecipDaily = "PRECTOTCORR" // corrected precipitation (mm/day)
)

// RequiredParams are the four sensors a weather sample is built from.
var RequiredParams = []string{ParamTemperature, ParamHumidity, ParamWindSpeed, ParamPrecipDaily}

// missingSentinel is the upstream's encoding for a missing observation. It is
// normalised out of every series before the response leaves this package.
const missingSentinel = -999.0

// Series maps YYYYMMDD date keys to observed values. Missing observations are
// absent from the map, never stored as a sentinel or NaN.
type Series map[string]float64

// Client fetches daily series for a point over a date range. The underlying
// http.Client is shared across requests and must be constructed once at
// process start.
type Client struct {
	baseURL   string
	hc        *http.Client
	retries   int
	baseDelay time.Duration
	store     *cache.Store
}

// Option configures a Client.
type Option func(*Client)

// WithCache attaches an on-disk response cache.
func WithCache(store *cache.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithBaseDelay overrides the initial retry delay (used in tests).
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// NewClient creates a reanalysis client using the shared HTTP client and
// transport policy from settings.
func NewClient(settings config.Settings, hc *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:   settings.ReanalysisBaseURL,
		hc:        hc,
		retries:   settings.Retries,
		baseDelay: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// powerResponse mirrors the upstream JSON envelope.
type powerResponse struct {
	Properties *struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
	Error string `json:"error"`
}

// DailySeries fetches the given daily parameters for a point over
// [start, end]. The result has one Series per requested parameter; sentinel
// values are normalised to missing.
func (c *Client) DailySeries(ctx context.Context, lat, lon float64, start, end time.Time, params []string) (map[string]Series, error) {
	if lat < -90 || lat > 90 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid latitude %v: must be -90 to 90", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, riskerr.New(riskerr.KindValidation, "invalid longitude %v: must be -180 to 180", lon)
	}
	if start.After(end) {
		return nil, riskerr.New(riskerr.KindValidation, "start date %s after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if len(params) == 0 {
		params = RequiredParams
	}

	startKey := start.Format("20060102")
	endKey := end.Format("20060102")

	var cacheKey string
	if c.store != nil {
		cacheKey = cache.Key("reanalysis-daily", lat, lon, startKey, endKey, params)
		if body, ok := c.store.Get(cacheKey); ok {
			log.Debugf("reanalysis cache hit for (%v, %v) %s-%s", lat, lon, startKey, endKey)
			return c.decode(body, params)
		}
	}

	v := url.Values{}
	v.Set("latitude", fmt.Sprintf("%v", lat))
	v.Set("longitude", fmt.Sprintf("%v", lon))
	v.Set("parameters", joinParams(params))
	v.Set("community", "RE")
	v.Set("start", startKey)
	v.Set("end", endKey)
	v.Set("format", "JSON")
	v.Set("time-standard", "UTC")

	reqURL := c.baseURL + "/api/temporal/daily/point?" + v.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	series, err := c.decode(body, params)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Put(cacheKey, body); err != nil {
			log.Warnf("failed to cache reanalysis response: %v", err)
		}
	}

	return series, nil
}

// get performs the HTTP GET with up to c.retries attempts. Backoff between
// attempts is baseDelay·2^attempt jittered by ±20%.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.2
	bo.MaxElapsedTime = 0

	var body []byte
	attempt := 0

	op := func() error {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(riskerr.Wrap(riskerr.KindInternal, err, "error creating reanalysis request"))
		}

		log.Debugf("reanalysis request (attempt %d): %v", attempt, reqURL)
		resp, err := c.hc.Do(req)
		if err != nil {
			// Transport errors are retryable
			return riskerr.Wrap(riskerr.KindUpstream, err, "reanalysis request failed")
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return riskerr.New(riskerr.KindRateLimited, "reanalysis archive rate limit exceeded")
		case resp.StatusCode == 500 || resp.StatusCode == 502 || resp.StatusCode == 503 || resp.StatusCode == 504:
			return riskerr.New(riskerr.KindUpstream, "reanalysis archive returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(riskerr.New(riskerr.KindUpstream, "reanalysis archive returned status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return riskerr.Wrap(riskerr.KindUpstream, err, "error reading reanalysis response")
		}
		return nil
	}

	retries := uint64(0)
	if c.retries > 1 {
		retries = uint64(c.retries - 1)
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decode parses the upstream envelope and normalises sentinels. The set of
// returned parameters is not validated beyond structure: callers may
// legitimately request a subset of what the archive offers.
func (c *Client) decode(body []byte, params []string) (map[string]Series, error) {
	var pr powerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, riskerr.Wrap(riskerr.KindBadResponse, err, "unable to decode reanalysis response")
	}
	if pr.Error != "" {
		return nil, riskerr.New(riskerr.KindBadResponse, "reanalysis archive error: %s", pr.Error)
	}
	if pr.Properties == nil || pr.Properties.Parameter == nil {
		return nil, riskerr.New(riskerr.KindBadResponse, "missing parameter map in reanalysis response")
	}

	result := make(map[string]Series, len(params))
	for _, p := range params {
		s := Series{}
		for dateKey, value := range pr.Properties.Parameter[p] {
			if value == missingSentinel {
				continue
			}
			s[dateKey] = value
		}
		result[p] = s
	}
	return result, nil
}

func joinParams(params []string) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
