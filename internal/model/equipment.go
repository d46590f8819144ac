package model

// Equipment represents a physical asset tracked for maintenance.
type Equipment struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SerialNumber  string `json:"serialNumber"`
	Department    string `json:"department"`
	AssignedTeam  string `json:"assignedTeam"`
	IsUnderRepair bool   `json:"isUnderRepair"`
}

// NewEquipment holds the fields accepted when registering equipment.
type NewEquipment struct {
	Name          string
	SerialNumber  string
	Department    string
	AssignedTeam  string
	IsUnderRepair bool
}

// UnknownEquipmentName is shown wherever a request points at equipment that does not exist.
const UnknownEquipmentName = "Unknown Equipment"

// EquipmentName resolves an equipment id against a lookup table, tolerating dangling references.
func EquipmentName(lookup map[int]Equipment, id int) string {
	if eq, ok := lookup[id]; ok {
		return eq.Name
	}
	return UnknownEquipmentName
}

// IndexEquipment builds an id lookup table.
func IndexEquipment(items []Equipment) map[int]Equipment {
	index := make(map[int]Equipment, len(items))
	for _, eq := range items {
		index[eq.ID] = eq
	}
	return index
}
