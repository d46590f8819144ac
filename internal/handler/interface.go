package handler

import (
	"context"
	"net/http"

	"gearguard/internal/analytics"
	"gearguard/internal/board"
	"gearguard/internal/model"
	"gearguard/internal/service"
)

// MaintenanceService is the business layer the handlers delegate to.
type MaintenanceService interface {
	ListEquipment(ctx context.Context, search string) []model.Equipment
	GetEquipment(ctx context.Context, id int) (model.Equipment, error)
	CreateEquipment(ctx context.Context, input service.CreateEquipmentInput) (model.Equipment, error)

	ListRequests(ctx context.Context) []model.MaintenanceRequest
	CreateRequest(ctx context.Context, input service.CreateRequestInput) (model.MaintenanceRequest, error)
	UpdateRequest(ctx context.Context, id int, input service.UpdateRequestInput) (model.MaintenanceRequest, error)
	MoveRequest(ctx context.Context, id int, input service.MoveInput) (board.MoveResult, error)

	Board(ctx context.Context) board.View
	Report(ctx context.Context) analytics.Report
	Calendar(ctx context.Context, year, month int) (analytics.Calendar, error)

	NotifierHealth(ctx context.Context) string
}

var _ MaintenanceService = (*service.MaintenanceService)(nil)

// MaintenanceHandlerInterface defines the contract for the HTTP handlers.
type MaintenanceHandlerInterface interface {
	// Equipment
	ListEquipmentHandler(w http.ResponseWriter, r *http.Request)
	GetEquipmentHandler(w http.ResponseWriter, r *http.Request)
	CreateEquipmentHandler(w http.ResponseWriter, r *http.Request)

	// Maintenance requests
	ListRequestsHandler(w http.ResponseWriter, r *http.Request)
	CreateRequestHandler(w http.ResponseWriter, r *http.Request)
	UpdateRequestHandler(w http.ResponseWriter, r *http.Request)

	// Board and reporting
	BoardHandler(w http.ResponseWriter, r *http.Request)
	MoveRequestHandler(w http.ResponseWriter, r *http.Request)
	ReportHandler(w http.ResponseWriter, r *http.Request)
	ReportXLSXHandler(w http.ResponseWriter, r *http.Request)
	CalendarHandler(w http.ResponseWriter, r *http.Request)

	// Health and monitoring
	HealthHandler(w http.ResponseWriter, r *http.Request)
}

// Ensure MaintenanceHandler implements MaintenanceHandlerInterface at compile time
var _ MaintenanceHandlerInterface = (*MaintenanceHandler)(nil)
