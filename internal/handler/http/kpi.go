package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
)

type KPIHandler interface {
	ListRecords(w http.ResponseWriter, r *http.Request)
	UpsertRecord(w http.ResponseWriter, r *http.Request)
	Targets(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Ranking(w http.ResponseWriter, r *http.Request)
	MonthlyBucket(w http.ResponseWriter, r *http.Request)
	TeamTrend(w http.ResponseWriter, r *http.Request)
	WeekOptions(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type KPIHandlerImpl struct {
	kpiService        kpi.KPIService
	keepaliveInterval time.Duration
}

func NewKPIHandler(kpiService kpi.KPIService) KPIHandler {
	return &KPIHandlerImpl{kpiService: kpiService, keepaliveInterval: 30 * time.Second}
}

// ListRecords handles GET /kpi/records
func (h *KPIHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	req := kpi.ListRecordsRequest{
		EmployeeID: q.String("employee_id"),
		Year:       q.Int("year"),
		Month:      q.Int("month"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.kpiService.ListRecords(r.Context(), actor, req)
	if err != nil {
		slog.Error("ListRecords service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, records)
}

// UpsertRecord handles PUT /kpi/records
func (h *KPIHandlerImpl) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req kpi.UpsertRecordRequest
	if !decodeJSON(w, r, "UpsertRecord", &req) {
		return
	}
	if err := req.Validate(); err != nil {
		slog.Error("UpsertRecord validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	record, err := h.kpiService.UpsertRecord(r.Context(), actor, req)
	if err != nil {
		slog.Error("UpsertRecord service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI record saved", record)
}

// Targets handles GET /kpi/targets
func (h *KPIHandlerImpl) Targets(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.kpiService.Targets())
}

func dashboardRequest(q *queryParams) kpi.DashboardRequest {
	return kpi.DashboardRequest{
		ViewType:   q.String("view_type"),
		Year:       q.Int("year"),
		Month:      q.Int("month"),
		Week:       q.Int("week"),
		Day:        q.String("day"),
		EmployeeID: q.String("employee_id"),
	}
}

// Dashboard handles GET /kpi/dashboard
func (h *KPIHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	req := dashboardRequest(q)
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	dashboard, err := h.kpiService.Dashboard(r.Context(), actor, req)
	if err != nil {
		slog.Error("Dashboard service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, dashboard)
}

// Ranking handles GET /kpi/ranking
func (h *KPIHandlerImpl) Ranking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	req := kpi.RankingRequest{
		DashboardRequest: dashboardRequest(q),
		SortBy:           q.String("sort_by"),
		Order:            q.String("order"),
		Filter:           q.String("filter"),
		Threshold:        q.Float("threshold"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	ranking, err := h.kpiService.Ranking(r.Context(), actor, req)
	if err != nil {
		slog.Error("Ranking service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, ranking)
}

// MonthlyBucket handles GET /kpi/monthly
func (h *KPIHandlerImpl) MonthlyBucket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	req := kpi.MonthlyBucketRequest{
		Metric:     q.String("metric"),
		Year:       q.Int("year"),
		EmployeeID: q.String("employee_id"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	buckets, err := h.kpiService.MonthlyBucket(r.Context(), actor, req)
	if err != nil {
		slog.Error("MonthlyBucket service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, buckets)
}

// TeamTrend handles GET /kpi/team-trend
func (h *KPIHandlerImpl) TeamTrend(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	req := kpi.TeamTrendRequest{
		Metric: q.String("metric"),
		Year:   q.Int("year"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	trend, err := h.kpiService.TeamTrend(r.Context(), actor, req)
	if err != nil {
		slog.Error("TeamTrend service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, trend)
}

// WeekOptions handles GET /kpi/weeks
func (h *KPIHandlerImpl) WeekOptions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	req := kpi.WeekOptionsRequest{
		Year:       q.Int("year"),
		Month:      q.Int("month"),
		EmployeeID: q.String("employee_id"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	weeks, err := h.kpiService.WeekOptions(r.Context(), actor, req)
	if err != nil {
		slog.Error("WeekOptions service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, weeks)
}

// Stream handles GET /kpi/stream as server-sent events. Browsers' EventSource cannot
// set headers, so the access token may also arrive as ?jwt=.
func (h *KPIHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	events, cancel, err := h.kpiService.Subscribe(r.Context(), actor)
	if err != nil {
		slog.Error("Stream service error", "error", err)
		response.HandleError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Stream encode error", "event", event.Name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
