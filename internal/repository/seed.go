package repository

import (
	"time"

	"gearguard/internal/model"
)

// Seed fills an empty store with the demo dataset. Scheduled dates are relative to now.
// It does nothing and returns false when any equipment already exists.
func Seed(store Store, now time.Time) bool {
	if len(store.ListEquipment()) > 0 {
		return false
	}

	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	press := store.CreateEquipment(model.NewEquipment{Name: "Hydraulic Press X1", SerialNumber: "HP-2024-001", Department: "Operations", AssignedTeam: "Alpha", IsUnderRepair: true})
	conveyor := store.CreateEquipment(model.NewEquipment{Name: "Conveyor Belt System", SerialNumber: "CB-2023-882", Department: "Logistics", AssignedTeam: "Beta"})
	cnc := store.CreateEquipment(model.NewEquipment{Name: "CNC Milling Machine", SerialNumber: "CNC-992-X", Department: "Engineering", AssignedTeam: "Gamma", IsUnderRepair: true})
	forklift := store.CreateEquipment(model.NewEquipment{Name: "Forklift MK-4", SerialNumber: "FL-5521", Department: "Logistics", AssignedTeam: "Delta"})
	rack := store.CreateEquipment(model.NewEquipment{Name: "Server Rack A1", SerialNumber: "SR-001-IT", Department: "IT", AssignedTeam: "Omega"})

	requests := []model.NewMaintenanceRequest{
		{Title: "Oil Leak in Piston", EquipmentID: press.ID, Status: model.StatusInProgress, ScheduledDate: yesterday, Technician: "Sarah Connor", Priority: model.PriorityHigh},
		{Title: "Annual Safety Check", EquipmentID: press.ID, Status: model.StatusNew, ScheduledDate: tomorrow, Technician: "John Doe", Priority: model.PriorityLow},
		{Title: "Belt Alignment", EquipmentID: conveyor.ID, Status: model.StatusRepaired, ScheduledDate: lastWeek, Technician: "Mike Ross", Priority: model.PriorityMedium},
		{Title: "Spindle Calibration", EquipmentID: cnc.ID, Status: model.StatusInProgress, ScheduledDate: yesterday, Technician: "Jessica Pearson", Priority: model.PriorityCritical},
		{Title: "Coolant Flush", EquipmentID: cnc.ID, Status: model.StatusNew, ScheduledDate: tomorrow, Technician: "Louis Litt", Priority: model.PriorityMedium},
		{Title: "Battery Replacement", EquipmentID: forklift.ID, Status: model.StatusNew, ScheduledDate: tomorrow, Technician: "Harvey Specter", Priority: model.PriorityMedium},
		{Title: "Firmware Update", EquipmentID: rack.ID, Status: model.StatusNew, ScheduledDate: tomorrow, Technician: "Donna Paulsen", Priority: model.PriorityLow},
		{Title: "Fan Noise Investigation", EquipmentID: rack.ID, Status: model.StatusScrap, ScheduledDate: lastWeek, Technician: "Rachel Zane", Priority: model.PriorityLow},
	}
	for _, req := range requests {
		store.CreateMaintenanceRequest(req)
	}
	return true
}
