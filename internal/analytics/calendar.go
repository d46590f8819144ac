package analytics

import (
	"sort"
	"time"

	"gearguard/internal/model"
)

// CalendarEntry is a preventive job shown on the schedule.
type CalendarEntry struct {
	RequestID     int          `json:"requestId"`
	Title         string       `json:"title"`
	EquipmentName string       `json:"equipmentName"`
	Technician    string       `json:"technician"`
	DurationHours int          `json:"durationHours"`
	Status        model.Status `json:"status"`
	ScheduledDate time.Time    `json:"scheduledDate"`
}

// CalendarDay groups the entries of one day.
type CalendarDay struct {
	Date    string          `json:"date"`
	Entries []CalendarEntry `json:"entries"`
}

// Calendar is the preventive maintenance schedule of one month.
type Calendar struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// MonthCalendar collects preventive requests scheduled in the given month (UTC days).
// Only days with at least one entry are listed; entries within a day are in scheduled order.
func MonthCalendar(requests []model.MaintenanceRequest, equipment []model.Equipment, year int, month time.Month) Calendar {
	index := model.IndexEquipment(equipment)

	byDay := make(map[string][]CalendarEntry)
	for _, req := range requests {
		if req.Type != model.TypePreventive {
			continue
		}
		scheduled := req.ScheduledDate.UTC()
		if scheduled.Year() != year || scheduled.Month() != month {
			continue
		}
		day := scheduled.Format("2006-01-02")
		byDay[day] = append(byDay[day], CalendarEntry{
			RequestID:     req.ID,
			Title:         req.Title,
			EquipmentName: model.EquipmentName(index, req.EquipmentID),
			Technician:    req.Technician,
			DurationHours: req.DurationHours,
			Status:        req.Status,
			ScheduledDate: req.ScheduledDate,
		})
	}

	cal := Calendar{Year: year, Month: int(month), Days: make([]CalendarDay, 0, len(byDay))}
	for day, entries := range byDay {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].ScheduledDate.Before(entries[j].ScheduledDate)
		})
		cal.Days = append(cal.Days, CalendarDay{Date: day, Entries: entries})
	}
	sort.Slice(cal.Days, func(i, j int) bool { return cal.Days[i].Date < cal.Days[j].Date })
	return cal
}
