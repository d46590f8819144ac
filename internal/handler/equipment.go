package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"gearguard/internal/service"
)

// ListEquipmentHandler lists equipment, filtered by the optional search query.
func (h *MaintenanceHandler) ListEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	items := h.Service.ListEquipment(ctx, r.URL.Query().Get("search"))
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, items)
}

// GetEquipmentHandler returns a single piece of equipment by ID.
func (h *MaintenanceHandler) GetEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.ErrorHandler.ParseID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	eq, err := h.Service.GetEquipment(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "retrieve equipment")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, eq)
}

// CreateEquipmentHandler registers a new piece of equipment.
func (h *MaintenanceHandler) CreateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var input service.CreateEquipmentInput
	if err := h.ResponseHelper.DecodeJSON(w, r, &input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	eq, err := h.Service.CreateEquipment(ctx, input)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "create equipment")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusCreated, eq)
}
