package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"gearguard/internal/analytics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler returns the pivot report as JSON.
func (h *MaintenanceHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.Service.Report(ctx))
}

// ReportXLSXHandler returns the pivot report as a spreadsheet download.
func (h *MaintenanceHandler) ReportXLSXHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	report := h.Service.Report(ctx)

	var buf bytes.Buffer
	if err := analytics.WriteXLSX(&buf, report); err != nil {
		h.ErrorHandler.HandleError(w, err, "export report")
		return
	}

	filename := fmt.Sprintf("maintenance-summary-%s.xlsx", report.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Debug("Failed to write report download", zap.Error(err))
	}
}

// CalendarHandler returns the preventive schedule of a month (current month by default).
func (h *MaintenanceHandler) CalendarHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	year, month, err := h.ResponseHelper.ParseMonthParams(r)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "parse calendar query")
		return
	}

	cal, err := h.Service.Calendar(ctx, year, month)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "build calendar")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, cal)
}
