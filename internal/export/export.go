// Package export renders a sample collection as CSV or JSON rows, one row
// per sample with flags and derived indices.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/internal/thresholds"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

// SampleRow is one exported sample. Heat index and wind chill are nil when
// undefined; CSV renders those as empty fields.
type SampleRow struct {
	TimestampLocal string   `json:"timestamp_local"`
	Year           int      `json:"year"`
	DOY            int      `json:"doy"`
	Latitude       float64  `json:"lat"`
	Longitude      float64  `json:"lon"`
	TemperatureC   float64  `json:"t2m_c"`
	HumidityPct    float64  `json:"rh2m_pct"`
	WindSpeedMS    float64  `json:"ws10m_ms"`
	HeatIndexC     *float64 `json:"hi_c"`
	WindChillC     *float64 `json:"wct_c"`
	PrecipMMPerH   float64  `json:"precip_mm_per_h"`
	PrecipSource   string   `json:"precip_source"`
	VeryHot        bool     `json:"flags_very_hot"`
	VeryCold       bool     `json:"flags_very_cold"`
	VeryWindy      bool     `json:"flags_very_windy"`
	VeryWet        bool     `json:"flags_very_wet"`
	AnyAdverse     bool     `json:"flags_any_adverse"`
}

// csvHeader fixes the CSV column order.
var csvHeader = []string{
	"timestamp_local", "year", "doy", "lat", "lon",
	"t2m_c", "rh2m_pct", "ws10m_ms", "hi_c", "wct_c",
	"precip_mm_per_h", "precip_source",
	"flags_very_hot", "flags_very_cold", "flags_very_windy", "flags_very_wet",
	"flags_any_adverse",
}

// Rows flattens a collection into export rows in sample order.
func Rows(col *samples.Collection, settings config.Settings) []SampleRow {
	rows := make([]SampleRow, len(col.Samples))
	for i := range col.Samples {
		s := &col.Samples[i]
		flags := thresholds.Flag(s, settings)

		row := SampleRow{
			TimestampLocal: s.TimestampLocal.Format(time.RFC3339),
			Year:           s.Year,
			DOY:            s.DOY,
			Latitude:       s.Latitude,
			Longitude:      s.Longitude,
			TemperatureC:   s.TemperatureC,
			HumidityPct:    s.RelativeHumidity,
			WindSpeedMS:    s.WindSpeedMS,
			PrecipMMPerH:   s.HourlyPrecipRate(),
			PrecipSource:   s.PrecipSource,
			VeryHot:        flags.VeryHot,
			VeryCold:       flags.VeryCold,
			VeryWindy:      flags.VeryWindy,
			VeryWet:        flags.VeryWet,
			AnyAdverse:     flags.Any(),
		}
		if hi, ok := s.HeatIndex(); ok {
			row.HeatIndexC = &hi
		}
		if wc, ok := s.WindChill(); ok {
			row.WindChillC = &wc
		}
		rows[i] = row
	}
	return rows
}

// WriteCSV streams rows as CSV with the fixed header order.
func WriteCSV(w io.Writer, rows []SampleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return riskerr.Wrap(riskerr.KindInternal, err, "error writing CSV header")
	}

	for _, row := range rows {
		record := []string{
			row.TimestampLocal,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.DOY),
			formatFloat(row.Latitude),
			formatFloat(row.Longitude),
			formatFloat(row.TemperatureC),
			formatFloat(row.HumidityPct),
			formatFloat(row.WindSpeedMS),
			formatOptional(row.HeatIndexC),
			formatOptional(row.WindChillC),
			formatFloat(row.PrecipMMPerH),
			row.PrecipSource,
			strconv.FormatBool(row.VeryHot),
			strconv.FormatBool(row.VeryCold),
			strconv.FormatBool(row.VeryWindy),
			strconv.FormatBool(row.VeryWet),
			strconv.FormatBool(row.AnyAdverse),
		}
		if err := cw.Write(record); err != nil {
			return riskerr.Wrap(riskerr.KindInternal, err, "error writing CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return riskerr.Wrap(riskerr.KindInternal, err, "error flushing CSV output")
	}
	return nil
}

// WriteJSON streams rows as a JSON array.
func WriteJSON(w io.Writer, rows []SampleRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return riskerr.Wrap(riskerr.KindInternal, err, "error encoding JSON export")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// Filename derives a download filename from the query envelope, e.g.
// outdoor_risk_export_3.73S_38.53W_2024-06-15_14h.csv.
func Filename(lat, lon float64, date time.Time, hour int, format string) string {
	ns := "N"
	if lat < 0 {
		ns = "S"
		lat = -lat
	}
	ew := "E"
	if lon < 0 {
		ew = "W"
		lon = -lon
	}
	return fmt.Sprintf("outdoor_risk_export_%.2f%s_%.2f%s_%s_%02dh.%s",
		lat, ns, lon, ew, date.Format("2006-01-02"), hour, format)
}

// ContentType maps an export format to its MIME type.
func ContentType(format string) string {
	if format == "json" {
		return "application/json"
	}
	return "text/csv"
}
