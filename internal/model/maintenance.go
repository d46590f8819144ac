package model

import "time"

// Status is a Kanban column a maintenance request sits in.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusRepaired   Status = "repaired"
	StatusScrap      Status = "scrap"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusRepaired, StatusScrap}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsClosed reports whether requests in this status are exempt from overdue tracking.
func (s Status) IsClosed() bool {
	return s == StatusRepaired || s == StatusScrap
}

// Priority of a maintenance request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// RequestType distinguishes breakdown repairs from planned upkeep.
type RequestType string

const (
	TypeCorrective RequestType = "corrective"
	TypePreventive RequestType = "preventive"
)

// Defaults applied when a request is created without the corresponding field.
const (
	DefaultPriority      = PriorityMedium
	DefaultType          = TypeCorrective
	DefaultDurationHours = 1
)

// MaintenanceRequest is a unit of maintenance work against one piece of equipment.
type MaintenanceRequest struct {
	ID            int         `json:"id"`
	Title         string      `json:"title"`
	EquipmentID   int         `json:"equipmentId"`
	Status        Status      `json:"status"`
	ScheduledDate time.Time   `json:"scheduledDate"`
	Technician    string      `json:"technician"`
	Priority      Priority    `json:"priority"`
	Type          RequestType `json:"type"`
	DurationHours int         `json:"durationHours"`
	IsOverdue     bool        `json:"isOverdue"`
}

// NewMaintenanceRequest holds the fields accepted when opening a request.
// Zero values of Priority, Type and DurationHours are replaced by the defaults.
type NewMaintenanceRequest struct {
	Title         string
	EquipmentID   int
	Status        Status
	ScheduledDate time.Time
	Technician    string
	Priority      Priority
	Type          RequestType
	DurationHours int
}

// MaintenanceRequestPatch is a partial update. Nil fields are left untouched.
// EquipmentID is deliberately absent: a request never moves to other equipment.
type MaintenanceRequestPatch struct {
	Title         *string
	Status        *Status
	ScheduledDate *time.Time
	Technician    *string
	Priority      *Priority
	Type          *RequestType
	DurationHours *int
}

// Apply merges the patch onto a copy of r. The derived overdue flag is not touched.
func (p MaintenanceRequestPatch) Apply(r MaintenanceRequest) MaintenanceRequest {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ScheduledDate != nil {
		r.ScheduledDate = *p.ScheduledDate
	}
	if p.Technician != nil {
		r.Technician = *p.Technician
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.DurationHours != nil {
		r.DurationHours = *p.DurationHours
	}
	return r
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s Status) MaintenanceRequestPatch {
	return MaintenanceRequestPatch{Status: &s}
}
