package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

func exportCollection() *samples.Collection {
	hourly := 6.0
	return &samples.Collection{
		Samples: []samples.Sample{
			{
				TimestampLocal:   time.Date(2020, 6, 15, 14, 0, 0, 0, time.UTC),
				Year:             2020,
				DOY:              167,
				Latitude:         -3.7319,
				Longitude:        -38.5267,
				TemperatureC:     32.0,
				RelativeHumidity: 70.0,
				WindSpeedMS:      3.0,
				PrecipDailyMM:    12.0,
				PrecipSource:     samples.SourceReanalysis,
			},
			{
				TimestampLocal:   time.Date(2021, 6, 15, 14, 0, 0, 0, time.UTC),
				Year:             2021,
				DOY:              166,
				Latitude:         -3.7319,
				Longitude:        -38.5267,
				TemperatureC:     20.0,
				RelativeHumidity: 50.0,
				WindSpeedMS:      12.0,
				PrecipDailyMM:    2.0,
				PrecipHourlyMM:   &hourly,
				PrecipSource:     "half-hourly",
			},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(exportCollection(), config.Default())
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.HeatIndexC == nil {
		t.Error("32°C at 70%% RH should have a heat index")
	}
	if first.WindChillC != nil {
		t.Error("32°C should not have a wind chill")
	}
	if first.PrecipMMPerH != 0.5 {
		t.Errorf("precip rate = %v, want 0.5 (12 mm/day)", first.PrecipMMPerH)
	}

	second := rows[1]
	if second.PrecipMMPerH != 6.0 {
		t.Errorf("precip rate = %v, want hourly observation 6.0", second.PrecipMMPerH)
	}
	if !second.VeryWindy || !second.VeryWet || !second.AnyAdverse {
		t.Errorf("flags = %+v, want windy, wet, and any", second)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := Rows(exportCollection(), config.Default())

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	header := strings.Join(records[0], ",")
	want := "timestamp_local,year,doy,lat,lon,t2m_c,rh2m_pct,ws10m_ms,hi_c,wct_c,precip_mm_per_h,precip_source,flags_very_hot,flags_very_cold,flags_very_windy,flags_very_wet,flags_any_adverse"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}

	// Undefined wind chill renders as an empty field, not a sentinel
	if records[1][9] != "" {
		t.Errorf("wct_c field = %q, want empty", records[1][9])
	}
	if records[1][8] == "" {
		t.Error("hi_c field should be populated for the hot humid sample")
	}
	if records[2][11] != "half-hourly" {
		t.Errorf("precip_source = %q, want half-hourly", records[2][11])
	}
}

func TestWriteJSON(t *testing.T) {
	rows := Rows(exportCollection(), config.Default())

	var buf bytes.Buffer
	if err := WriteJSON(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d objects, want 2", len(decoded))
	}
	if decoded[0]["wct_c"] != nil {
		t.Errorf("wct_c = %v, want null", decoded[0]["wct_c"])
	}
	if decoded[1]["precip_source"] != "half-hourly" {
		t.Errorf("precip_source = %v, want half-hourly", decoded[1]["precip_source"])
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	got := Filename(-3.7319, -38.5267, date, 14, "csv")
	want := "outdoor_risk_export_3.73S_38.53W_2024-06-15_14h.csv"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}

	got = Filename(51.5074, 0.1278, date, 9, "json")
	want = "outdoor_risk_export_51.51N_0.13E_2024-06-15_09h.json"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("json"); got != "application/json" {
		t.Errorf("json content type = %q", got)
	}
	if got := ContentType("csv"); got != "text/csv" {
		t.Errorf("csv content type = %q", got)
	}
}
