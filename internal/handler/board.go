package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"gearguard/internal/service"
)

// BoardHandler returns the Kanban lanes.
func (h *MaintenanceHandler) BoardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.Service.Board(ctx))
}

// MoveRequestHandler applies a card drop. A drop that changes nothing still answers 200 with moved=false.
func (h *MaintenanceHandler) MoveRequestHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.ErrorHandler.ParseID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var input service.MoveInput
	if err := h.ResponseHelper.DecodeJSON(w, r, &input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	result, err := h.Service.MoveRequest(ctx, id, input)
	if err != nil {
		h.ErrorHandler.HandleError(w, err, "move card")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, result)
}
