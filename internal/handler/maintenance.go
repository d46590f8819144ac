package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gearguard/internal/service"
)

// Timeouts applied to individual handlers
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 30 * time.Second
	HealthCheckTimeout = 2 * time.Second
)

// MaintenanceHandler handles the HTTP requests for equipment, maintenance requests and the board.
type MaintenanceHandler struct {
	Service MaintenanceService
	Logger  *zap.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewMaintenanceHandler creates a new MaintenanceHandler with dependencies and helpers
func NewMaintenanceHandler(svc MaintenanceService, logger *zap.Logger) *MaintenanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MaintenanceHandler{
		Service:        svc,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// ListRequestsHandler returns every maintenance request.
func (h *MaintenanceHandler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.Service.ListRequests(ctx))
}

// CreateRequestHandler opens a maintenance request.
func (h *MaintenanceHandler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var input service.CreateRequestInput
	if err := h.ResponseHelper.DecodeJSON(w, r, &input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	req, err := h.Service.CreateRequest(ctx, input)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "create maintenance request")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusCreated, req)
}

// UpdateRequestHandler applies a partial update to a maintenance request.
func (h *MaintenanceHandler) UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.ErrorHandler.ParseID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var input service.UpdateRequestInput
	if err := h.ResponseHelper.DecodeJSON(w, r, &input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	req, err := h.Service.UpdateRequest(ctx, id, input)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "update maintenance request")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, req)
}

// HealthHandler reports liveness along with the state of the notification webhook.
func (h *MaintenanceHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, HealthCheckTimeout)
	defer cancel()

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateHealthCheckData(h.Service.NotifierHealth(ctx)))
}
