package reanalysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

const goodBody = `{
	"properties": {
		"parameter": {
			"T2M": {"20230615": 28.5, "20230616": -999, "20230617": 29.1},
			"RH2M": {"20230615": 65.0, "20230616": 70.0, "20230617": 62.0},
			"WS10M": {"20230615": 3.2, "20230616": 4.1, "20230617": 2.8},
			"PRECTOTCORR": {"20230615": 0.0, "20230616": 12.4, "20230617": 1.1}
		}
	}
}`

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	settings := config.Default()
	settings.ReanalysisBaseURL = srv.URL

	c := NewClient(settings, srv.Client(), WithBaseDelay(time.Millisecond))
	return c, srv
}

func TestDailySeries(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("community") != "RE" {
			t.Errorf("community = %q, want RE", q.Get("community"))
		}
		if q.Get("start") != "20230615" || q.Get("end") != "20230617" {
			t.Errorf("date range = %q-%q, want 20230615-20230617", q.Get("start"), q.Get("end"))
		}
		if q.Get("format") != "JSON" {
			t.Errorf("format = %q, want JSON", q.Get("format"))
		}
		w.Write([]byte(goodBody))
	})

	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 17, 0, 0, 0, 0, time.UTC)

	series, err := c.DailySeries(context.Background(), -3.7319, -38.5267, start, end, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(series) != len(RequiredParams) {
		t.Fatalf("got %d parameters, want %d", len(series), len(RequiredParams))
	}

	// Sentinel value for 20230616 is dropped, not stored
	temp := series[ParamTemperature]
	if len(temp) != 2 {
		t.Errorf("T2M has %d entries, want 2 (sentinel dropped): %v", len(temp), temp)
	}
	if _, ok := temp["20230616"]; ok {
		t.Error("sentinel value for 20230616 should be absent")
	}
	if got := temp["20230615"]; got != 28.5 {
		t.Errorf("T2M[20230615] = %v, want 28.5", got)
	}

	if got := series[ParamPrecipDaily]["20230616"]; got != 12.4 {
		t.Errorf("PRECTOTCORR[20230616] = %v, want 12.4", got)
	}
}

func TestDailySeriesValidation(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for invalid input")
	})

	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lat, lon   float64
		start, end time.Time
	}{
		{"latitude too high", 91, 0, start, end},
		{"latitude too low", -91, 0, start, end},
		{"longitude too high", 0, 181, start, end},
		{"longitude too low", 0, -181, start, end},
		{"start after end", 0, 0, end, start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.DailySeries(context.Background(), tt.lat, tt.lon, tt.start, tt.end, nil)
			if !riskerr.IsKind(err, riskerr.KindValidation) {
				t.Errorf("error kind = %v, want validation", riskerr.KindOf(err))
			}
		})
	}
}

func TestDailySeriesRetriesThenSucceeds(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(goodBody))
	})

	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 17, 0, 0, 0, 0, time.UTC)

	_, err := c.DailySeries(context.Background(), 0, 0, start, end, nil)
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestDailySeriesRateLimitExhausted(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 17, 0, 0, 0, 0, time.UTC)

	_, err := c.DailySeries(context.Background(), 0, 0, start, end, nil)
	if !riskerr.IsKind(err, riskerr.KindRateLimited) {
		t.Fatalf("error kind = %v, want rate-limited", riskerr.KindOf(err))
	}
	// Default policy is 3 attempts total
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestDailySeriesPermanentStatus(t *testing.T) {
	var calls int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 17, 0, 0, 0, 0, time.UTC)

	_, err := c.DailySeries(context.Background(), 0, 0, start, end, nil)
	if !riskerr.IsKind(err, riskerr.KindUpstream) {
		t.Fatalf("error kind = %v, want upstream", riskerr.KindOf(err))
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 404)", got)
	}
}

func TestDailySeriesBadResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>error</html>`},
		{"upstream error field", `{"error": "parameter not available"}`},
		{"missing parameter map", `{"properties": {}}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
			end := time.Date(2023, 6, 17, 0, 0, 0, 0, time.UTC)

			_, err := c.DailySeries(context.Background(), 0, 0, start, end, nil)
			if !riskerr.IsKind(err, riskerr.KindBadResponse) {
				t.Errorf("error kind = %v, want bad-response", riskerr.KindOf(err))
			}
		})
	}
}

func TestDailySeriesSubsetOfParams(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("parameters"); got != "T2M" {
			t.Errorf("parameters = %q, want T2M", got)
		}
		w.Write([]byte(`{"properties": {"parameter": {"T2M": {"20230615": 28.5}}}}`))
	})

	start := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	series, err := c.DailySeries(context.Background(), 0, 0, start, start, []string{ParamTemperature})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d parameters, want 1", len(series))
	}
}
