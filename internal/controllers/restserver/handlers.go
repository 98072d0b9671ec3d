package restserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chrissnell/outdoorrisk/internal/analysis"
	"github.com/chrissnell/outdoorrisk/internal/export"
	"github.com/chrissnell/outdoorrisk/internal/geotime"
	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/riskerr"
	"github.com/chrissnell/outdoorrisk/internal/samples"
)

// Handlers holds the HTTP endpoint handlers.
type Handlers struct {
	controller *Controller
}

// NewHandlers creates handlers bound to the controller.
func NewHandlers(controller *Controller) *Handlers {
	return &Handlers{controller: controller}
}

// GetHealth responds to liveness probes.
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// riskQuery is the parsed and validated request envelope.
type riskQuery struct {
	lat    float64
	lon    float64
	date   string
	hour   int
	window int
	detail string
	format string
}

// parseQuery validates the shared query parameters for risk and export.
func (h *Handlers) parseQuery(r *http.Request) (*riskQuery, error) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return nil, riskerr.New(riskerr.KindValidation, "missing or invalid lat parameter")
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return nil, riskerr.New(riskerr.KindValidation, "missing or invalid lon parameter")
	}

	date := q.Get("date")
	if _, err := geotime.ParseDate(date); err != nil {
		return nil, err
	}

	hour, err := strconv.Atoi(q.Get("hour"))
	if err != nil || hour < 0 || hour > 23 {
		return nil, riskerr.New(riskerr.KindValidation, "hour parameter must be an integer 0-23")
	}

	window := h.controller.settings.DefaultWindowDays
	if raw := q.Get("window"); raw != "" {
		window, err = strconv.Atoi(raw)
		if err != nil || window < 1 || window > 30 {
			return nil, riskerr.New(riskerr.KindValidation, "window parameter must be an integer 1-30")
		}
	}

	detail := q.Get("detail")
	switch detail {
	case "":
		detail = "lean"
	case "lean", "full":
	default:
		return nil, riskerr.New(riskerr.KindValidation, "detail parameter must be lean or full")
	}

	format := q.Get("format")
	switch format {
	case "":
		format = "csv"
	case "csv", "json":
	default:
		return nil, riskerr.New(riskerr.KindValidation, "format parameter must be csv or json")
	}

	return &riskQuery{
		lat:    lat,
		lon:    lon,
		date:   date,
		hour:   hour,
		window: window,
		detail: detail,
		format: format,
	}, nil
}

func (h *Handlers) collect(r *http.Request, q *riskQuery) (*samples.Collection, error) {
	return h.controller.collector.Collect(r.Context(), samples.Request{
		Latitude:   q.lat,
		Longitude:  q.lon,
		TargetDate: q.date,
		TargetHour: q.hour,
		WindowDays: q.window,
	})
}

// GetRiskAssessment computes the probability of adverse conditions for a
// location, date, and hour.
func (h *Handlers) GetRiskAssessment(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	col, err := h.collect(r, q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	settings := h.controller.settings
	results, err := analysis.Probabilities(col, settings)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	leanKinds := []analysis.Kind{
		analysis.KindHot, analysis.KindCold, analysis.KindWindy, analysis.KindWet, analysis.KindAny,
	}
	conditions := make(map[string]ConditionBlock, len(results))
	for _, kind := range leanKinds {
		conditions[string(kind)] = conditionBlock(results[kind])
	}

	resp := RiskResponse{
		Request: RequestEcho{
			Latitude:   q.lat,
			Longitude:  q.lon,
			Date:       q.date,
			Hour:       q.hour,
			WindowDays: q.window,
			Timezone:   col.Timezone,
			Detail:     q.detail,
		},
		Conditions: conditions,
		SampleStatistics: SampleStatistics{
			TotalSamples:        col.TotalSamples,
			YearsWithData:       col.YearsWithData,
			TotalYearsRequested: col.TotalYearsRequested,
			CoverageYears:       col.CoverageYears(),
			CoverageAdequate:    col.CoverageAdequate,
			Timezone:            col.Timezone,
		},
		Thresholds: ThresholdBlock{
			HotHeatIndexC:  settings.HotHeatIndexC,
			ColdWindChillC: settings.ColdWindChillC,
			WindMS:         settings.WindMS,
			RainMMPerHour:  settings.RainMMPerHour,
		},
	}

	if q.detail == "full" {
		conditions[string(analysis.KindMultiple)] = conditionBlock(results[analysis.KindMultiple])
		resp.Distributions = analysis.Distributions(col, settings)
		resp.Trends = analysis.Trends(col, settings)
		report := col.Coverage(settings)
		resp.CoverageReport = &report
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetExport streams the sample rows behind an assessment as CSV or JSON.
func (h *Handlers) GetExport(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	col, err := h.collect(r, q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rows := export.Rows(col, h.controller.settings)

	filename := export.Filename(q.lat, q.lon, col.TargetDate, q.hour, q.format)
	w.Header().Set("Content-Type", export.ContentType(q.format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if q.format == "json" {
		err = export.WriteJSON(w, rows)
	} else {
		err = export.WriteCSV(w, rows)
	}
	if err != nil {
		log.Errorf("error streaming export: %v", err)
	}
}

// writeError maps an error to its HTTP status and JSON body.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := riskerr.KindOf(err)
	status := riskerr.HTTPStatus(kind)

	if status >= 500 {
		log.Errorf("request failed: %v", err)
	} else {
		log.Debugf("request rejected: %v", err)
	}

	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Kind:      string(kind),
		RequestID: requestID(r),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("error encoding response: %v", err)
	}
}

func conditionBlock(r *analysis.ProbabilityResult) ConditionBlock {
	return ConditionBlock{
		Probability: r.Probability,
		ConfidenceInterval: ConfidenceInterval{
			Lower: r.CILower,
			Upper: r.CIUpper,
			Level: r.ConfidenceLevel,
			Width: r.CIWidth(),
		},
		PositiveSamples: r.PositiveSamples,
	}
}
