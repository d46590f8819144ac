package service

import (
	"context"

	"gearguard/internal/model"
)

// NotificationService delivers maintenance events to whoever is listening.
type NotificationService interface {
	SendMaintenanceNotification(ctx context.Context, event MaintenanceEvent) error
}

// HealthReporter is implemented by notification services that can check their endpoint.
type HealthReporter interface {
	NotifierHealth(ctx context.Context) string
}

// Notifier health values when the notification service cannot say for itself.
const (
	NotifierDisabled = "disabled"
	NotifierUnknown  = "unknown"
)

// EventType names a maintenance event.
type EventType string

const (
	EventRequestOverdue  EventType = "request.overdue"
	EventStatusChanged   EventType = "request.status_changed"
	EventRequestScrapped EventType = "request.scrapped"
)

// MaintenanceEvent is emitted after a write that someone should hear about.
type MaintenanceEvent struct {
	Type           EventType
	Request        model.MaintenanceRequest
	EquipmentName  string
	PreviousStatus model.Status
	Message        string
}
