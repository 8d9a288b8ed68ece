package handlers

import (
	"net/http"
	"strconv"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	userFilter, err := queryID(r, "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	projectFilter, err := queryID(r, "project")
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, r, apperrors.New(apperrors.BadRequest, "limit param must be a non-negative integer"))
			return
		}
	}

	report, err := h.reports.BuildReport(r.Context(), caller, services.ReportFilter{
		User:      userFilter,
		Project:   projectFilter,
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Limit:     limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, report)
}
