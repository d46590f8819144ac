package analytics

import (
	"sort"
	"time"

	"gearguard/internal/model"
)

// Fallback labels for requests whose equipment is missing or has no team/department.
const (
	UnassignedTeam    = "Unassigned"
	GeneralDepartment = "General"
)

// Bucket is one bar or slice of a chart.
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// SummaryRow is one line of the pivot table, keyed by department.
type SummaryRow struct {
	Department    string `json:"department"`
	Corrective    int    `json:"corrective"`
	Preventive    int    `json:"preventive"`
	Total         int    `json:"total"`
	DurationHours int    `json:"durationHours"`
}

// EquipmentLoad is the number of open requests against one piece of equipment.
type EquipmentLoad struct {
	EquipmentID   int    `json:"equipmentId"`
	Name          string `json:"name"`
	IsUnderRepair bool   `json:"isUnderRepair"`
	OpenRequests  int    `json:"openRequests"`
}

// Report is the pivot-style analytics over all requests.
type Report struct {
	GeneratedAt  time.Time       `json:"generatedAt"`
	ByTeam       []Bucket        `json:"byTeam"`
	ByDepartment []Bucket        `json:"byDepartment"`
	Rows         []SummaryRow    `json:"rows"`
	Totals       SummaryRow      `json:"totals"`
	Equipment    []EquipmentLoad `json:"equipment"`
	Overdue      int             `json:"overdue"`
}

// Summarize builds the report. Requests pointing at unknown equipment are counted under
// the fallback team and department.
func Summarize(requests []model.MaintenanceRequest, equipment []model.Equipment, now time.Time) Report {
	index := model.IndexEquipment(equipment)

	teams := make(map[string]int)
	departments := make(map[string]int)
	rows := make(map[string]*SummaryRow)
	totals := SummaryRow{Department: "Total"}
	overdue := 0

	for _, req := range requests {
		team, dept := UnassignedTeam, GeneralDepartment
		if eq, ok := index[req.EquipmentID]; ok {
			if eq.AssignedTeam != "" {
				team = eq.AssignedTeam
			}
			if eq.Department != "" {
				dept = eq.Department
			}
		}
		teams[team]++
		departments[dept]++

		row, ok := rows[dept]
		if !ok {
			row = &SummaryRow{Department: dept}
			rows[dept] = row
		}
		row.add(req)
		totals.add(req)

		if req.IsOverdue {
			overdue++
		}
	}

	byDepartment := toBuckets(departments)
	summary := make([]SummaryRow, 0, len(byDepartment))
	for _, b := range byDepartment {
		summary = append(summary, *rows[b.Name])
	}

	return Report{
		GeneratedAt:  now,
		ByTeam:       toBuckets(teams),
		ByDepartment: byDepartment,
		Rows:         summary,
		Totals:       totals,
		Equipment:    EquipmentLoads(requests, equipment),
		Overdue:      overdue,
	}
}

func (r *SummaryRow) add(req model.MaintenanceRequest) {
	switch req.Type {
	case model.TypeCorrective:
		r.Corrective++
	case model.TypePreventive:
		r.Preventive++
	}
	r.Total++
	r.DurationHours += req.DurationHours
}

// toBuckets sorts by count descending, then name.
func toBuckets(counts map[string]int) []Bucket {
	buckets := make([]Bucket, 0, len(counts))
	for name, value := range counts {
		buckets = append(buckets, Bucket{Name: name, Value: value})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Value != buckets[j].Value {
			return buckets[i].Value > buckets[j].Value
		}
		return buckets[i].Name < buckets[j].Name
	})
	return buckets
}

// OpenRequestCounts counts requests per equipment id that are not yet repaired.
// Scrapped requests still count as open, matching the equipment grid.
func OpenRequestCounts(requests []model.MaintenanceRequest) map[int]int {
	counts := make(map[int]int)
	for _, req := range requests {
		if req.Status != model.StatusRepaired {
			counts[req.EquipmentID]++
		}
	}
	return counts
}

// EquipmentLoads lists every piece of equipment, in the given order, with its open request count.
func EquipmentLoads(requests []model.MaintenanceRequest, equipment []model.Equipment) []EquipmentLoad {
	open := OpenRequestCounts(requests)
	loads := make([]EquipmentLoad, 0, len(equipment))
	for _, eq := range equipment {
		loads = append(loads, EquipmentLoad{
			EquipmentID:   eq.ID,
			Name:          eq.Name,
			IsUnderRepair: eq.IsUnderRepair,
			OpenRequests:  open[eq.ID],
		})
	}
	return loads
}
