package service

import (
	"gearguard/internal/model"
	"gearguard/pkg/validation"
)

// CreateEquipmentInput is the payload for registering equipment.
type CreateEquipmentInput struct {
	Name          string `json:"name" validate:"notblank,max=200"`
	SerialNumber  string `json:"serialNumber" validate:"notblank,max=100"`
	Department    string `json:"department" validate:"notblank,max=100"`
	AssignedTeam  string `json:"assignedTeam" validate:"notblank,max=100"`
	IsUnderRepair bool   `json:"isUnderRepair"`
}

// CreateRequestInput is the payload for opening a maintenance request.
// An isOverdue field in the body is not bound and therefore ignored.
type CreateRequestInput struct {
	Title         string `json:"title" validate:"notblank,max=200"`
	EquipmentID   *int   `json:"equipmentId" validate:"required"`
	Status        string `json:"status" validate:"omitempty,oneof=new in_progress repaired scrap"`
	ScheduledDate string `json:"scheduledDate" validate:"notblank"`
	Technician    string `json:"technician" validate:"notblank,max=100"`
	Priority      string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Type          string `json:"type" validate:"omitempty,oneof=corrective preventive"`
	DurationHours *int   `json:"durationHours" validate:"omitnil,min=1"`
}

// UpdateRequestInput is a partial update. Only fields present in the body are checked.
type UpdateRequestInput struct {
	Title         *string `json:"title" validate:"omitnil,notblank,max=200"`
	EquipmentID   *int    `json:"equipmentId"`
	Status        *string `json:"status" validate:"omitnil,oneof=new in_progress repaired scrap"`
	ScheduledDate *string `json:"scheduledDate" validate:"omitnil,notblank"`
	Technician    *string `json:"technician" validate:"omitnil,notblank,max=100"`
	Priority      *string `json:"priority" validate:"omitnil,oneof=low medium high critical"`
	Type          *string `json:"type" validate:"omitnil,oneof=corrective preventive"`
	DurationHours *int    `json:"durationHours" validate:"omitnil,min=1"`
}

// MoveInput is a board drop: a column, or the card the pointer was over.
type MoveInput struct {
	Column     string `json:"column" validate:"required_without=OverCardID"`
	OverCardID *int   `json:"overCardId" validate:"omitnil,min=1"`
}

func (in CreateEquipmentInput) toModel() model.NewEquipment {
	return model.NewEquipment{
		Name:          in.Name,
		SerialNumber:  in.SerialNumber,
		Department:    in.Department,
		AssignedTeam:  in.AssignedTeam,
		IsUnderRepair: in.IsUnderRepair,
	}
}

func (in CreateRequestInput) toModel() (model.NewMaintenanceRequest, error) {
	scheduled, err := validation.ParseDate("scheduledDate", in.ScheduledDate)
	if err != nil {
		return model.NewMaintenanceRequest{}, err
	}

	status := model.Status(in.Status)
	if status == "" {
		status = model.StatusNew
	}

	req := model.NewMaintenanceRequest{
		Title:         in.Title,
		EquipmentID:   *in.EquipmentID,
		Status:        status,
		ScheduledDate: scheduled,
		Technician:    in.Technician,
		Priority:      model.Priority(in.Priority),
		Type:          model.RequestType(in.Type),
	}
	if in.DurationHours != nil {
		req.DurationHours = *in.DurationHours
	}
	return req, nil
}

// toPatch converts the present fields. EquipmentID is not part of a patch; the service
// checks it against the stored value.
func (in UpdateRequestInput) toPatch() (model.MaintenanceRequestPatch, error) {
	var patch model.MaintenanceRequestPatch

	patch.Title = in.Title
	patch.Technician = in.Technician
	patch.DurationHours = in.DurationHours
	if in.Status != nil {
		s := model.Status(*in.Status)
		patch.Status = &s
	}
	if in.Priority != nil {
		p := model.Priority(*in.Priority)
		patch.Priority = &p
	}
	if in.Type != nil {
		t := model.RequestType(*in.Type)
		patch.Type = &t
	}
	if in.ScheduledDate != nil {
		scheduled, err := validation.ParseDate("scheduledDate", *in.ScheduledDate)
		if err != nil {
			return model.MaintenanceRequestPatch{}, err
		}
		patch.ScheduledDate = &scheduled
	}
	return patch, nil
}
