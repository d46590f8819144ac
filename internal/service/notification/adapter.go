package notification

import (
	"context"
	"strconv"
	"time"

	"gearguard/internal/notification"
	"gearguard/internal/service"
)

// ServiceAdapter adapts the notification client to the service layer interface
type ServiceAdapter struct {
	client notification.Notifier
}

// NewServiceAdapter creates a new notification service adapter
func NewServiceAdapter(client notification.Notifier) *ServiceAdapter {
	return &ServiceAdapter{
		client: client,
	}
}

// SendMaintenanceNotification converts a maintenance event into a webhook notification
func (a *ServiceAdapter) SendMaintenanceNotification(ctx context.Context, event service.MaintenanceEvent) error {
	req := event.Request
	clientNotification := notification.Notification{
		Level:       mapNotificationLevel(event.Type),
		Event:       string(event.Type),
		Message:     event.Message,
		RequestID:   req.ID,
		EquipmentID: req.EquipmentID,
		Technician:  req.Technician,
		Metadata: map[string]string{
			"title":          req.Title,
			"status":         string(req.Status),
			"priority":       string(req.Priority),
			"type":           string(req.Type),
			"scheduled_date": req.ScheduledDate.UTC().Format(time.RFC3339),
			"is_overdue":     strconv.FormatBool(req.IsOverdue),
		},
	}

	if event.EquipmentName != "" {
		clientNotification.Metadata["equipment_name"] = event.EquipmentName
	}
	if event.PreviousStatus != "" {
		clientNotification.Metadata["previous_status"] = string(event.PreviousStatus)
	}

	return a.client.SendNotificationWithContext(ctx, clientNotification)
}

// NotifierHealth checks the webhook behind the client
func (a *ServiceAdapter) NotifierHealth(ctx context.Context) string {
	return string(a.client.Health(ctx))
}

// mapNotificationLevel maps service event types to client notification levels
func mapNotificationLevel(eventType service.EventType) notification.NotificationLevel {
	switch eventType {
	case service.EventRequestOverdue, service.EventRequestScrapped:
		return notification.LevelWarning
	case service.EventStatusChanged:
		return notification.LevelInfo
	default:
		return notification.LevelInfo
	}
}
