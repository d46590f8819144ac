package router

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gearguard/internal/config"
	"gearguard/internal/handler"
	"gearguard/internal/metrics"
	"gearguard/internal/middleware"
	"gearguard/pkg/errors"
)

// NewRouter creates the API routes and wraps them in the middleware chain.
// The outer chain runs for every request, including preflights and unmatched paths.
func NewRouter(h handler.MaintenanceHandlerInterface, cfg *config.Config, logger *zap.Logger, recorder *metrics.Recorder) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = jsonError(errors.NewAppError(errors.ErrorCodeNotFound, "Route not found"), http.StatusNotFound)
	r.MethodNotAllowedHandler = jsonError(errors.BadRequestError("Method not allowed"), http.StatusMethodNotAllowed)

	// Route templates are only known once mux has matched, so metrics sit inside the router
	r.Use(metrics.Middleware(recorder))

	api := r.PathPrefix("/api").Subrouter()

	// Equipment
	api.HandleFunc("/equipment", h.ListEquipmentHandler).Methods(http.MethodGet)
	api.HandleFunc("/equipment", h.CreateEquipmentHandler).Methods(http.MethodPost)
	api.HandleFunc("/equipment/{id}", h.GetEquipmentHandler).Methods(http.MethodGet)

	// Maintenance requests
	api.HandleFunc("/maintenance-requests", h.ListRequestsHandler).Methods(http.MethodGet)
	api.HandleFunc("/maintenance-requests", h.CreateRequestHandler).Methods(http.MethodPost)
	api.HandleFunc("/maintenance-requests/{id}", h.UpdateRequestHandler).Methods(http.MethodPatch)
	api.HandleFunc("/maintenance-requests/{id}/move", h.MoveRequestHandler).Methods(http.MethodPost)

	// Board and reporting
	api.HandleFunc("/board", h.BoardHandler).Methods(http.MethodGet)
	api.HandleFunc("/reports/summary", h.ReportHandler).Methods(http.MethodGet)
	api.HandleFunc("/reports/summary.xlsx", h.ReportXLSXHandler).Methods(http.MethodGet)
	api.HandleFunc("/calendar", h.CalendarHandler).Methods(http.MethodGet)

	// Health check
	api.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security)
	loggingMW := middleware.NewLoggingMiddleware(logger)

	// Listed outermost first
	chain := []func(http.Handler) http.Handler{
		loggingMW.Recover,
		loggingMW.RequestID,
		securityMW.TrustedProxy,
		loggingMW.LogRequests,
		securityMW.SecurityHeaders,
		securityMW.CORS,
		securityMW.RateLimit,
		securityMW.RequestTimeout,
	}

	var wrapped http.Handler = r
	for i := len(chain) - 1; i >= 0; i-- {
		wrapped = chain[i](wrapped)
	}
	return wrapped
}

func jsonError(appErr *errors.AppError, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(handler.ErrorResponse{
			Message: appErr.Message,
			Code:    string(appErr.Code),
		})
	})
}
