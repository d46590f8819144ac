// Package board implements the maintenance Kanban: fixed status columns and the
// drag-and-drop move protocol that turns a drop into at most one store update.
//
// Every status may move to every other status. There are no guards and no terminal column.
package board

import (
	"errors"
	"fmt"
	"sort"

	"gearguard/internal/model"
	"gearguard/internal/repository"
)

// ErrUnknownColumn is returned when a drop target names a column that does not exist.
var ErrUnknownColumn = errors.New("unknown board column")

// Column is one lane of the board.
type Column struct {
	Status model.Status `json:"id"`
	Title  string       `json:"title"`
}

// Columns lists the board lanes in display order.
var Columns = []Column{
	{Status: model.StatusNew, Title: "New Requests"},
	{Status: model.StatusInProgress, Title: "In Progress"},
	{Status: model.StatusRepaired, Title: "Repaired"},
	{Status: model.StatusScrap, Title: "Scrap / Decommission"},
}

// Target is where a card was dropped: either a column or another card.
// Column takes precedence when both are set.
type Target struct {
	Column     model.Status
	OverCardID int
}

// IsZero reports whether the drop landed nowhere.
func (t Target) IsZero() bool {
	return t.Column == "" && t.OverCardID == 0
}

// Store is the subset of the record store the board needs.
type Store interface {
	GetMaintenanceRequest(id int) (model.MaintenanceRequest, error)
	UpdateMaintenanceRequest(id int, patch model.MaintenanceRequestPatch) (model.MaintenanceRequest, error)
}

var _ Store = (repository.Store)(nil)

// MoveResult describes the outcome of a drop.
type MoveResult struct {
	Moved   bool                     `json:"moved"`
	From    model.Status             `json:"from"`
	To      model.Status             `json:"to"`
	Request model.MaintenanceRequest `json:"request"`
}

// ResolveStatus works out the destination status of a drop.
// ok is false when the target does not identify a status (nothing under the pointer,
// or a card that no longer exists).
func ResolveStatus(store Store, target Target) (model.Status, bool, error) {
	if target.IsZero() {
		return "", false, nil
	}
	if target.Column != "" {
		if !target.Column.Valid() {
			return "", false, fmt.Errorf("%w: %s", ErrUnknownColumn, target.Column)
		}
		return target.Column, true, nil
	}

	over, err := store.GetMaintenanceRequest(target.OverCardID)
	if errors.Is(err, repository.ErrMaintenanceRequestNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return over.Status, true, nil
}

// Move applies a drop of cardID onto target. Dropping a card onto its own column,
// or onto nothing, issues no update.
func Move(store Store, cardID int, target Target) (MoveResult, error) {
	card, err := store.GetMaintenanceRequest(cardID)
	if err != nil {
		return MoveResult{}, err
	}

	result := MoveResult{From: card.Status, To: card.Status, Request: card}

	dest, ok, err := ResolveStatus(store, target)
	if err != nil {
		return MoveResult{}, err
	}
	if !ok || dest == card.Status {
		return result, nil
	}

	updated, err := store.UpdateMaintenanceRequest(cardID, model.StatusPatch(dest))
	if err != nil {
		return MoveResult{}, err
	}

	result.Moved = true
	result.To = updated.Status
	result.Request = updated
	return result, nil
}

// Card is a request as rendered on the board.
type Card struct {
	model.MaintenanceRequest
	EquipmentName string `json:"equipmentName"`
}

// Lane is a column with its cards.
type Lane struct {
	Column
	Count int    `json:"count"`
	Cards []Card `json:"cards"`
}

// View is the whole board.
type View struct {
	Lanes []Lane `json:"lanes"`
}

// Build groups requests into lanes. Overdue cards come first in each lane; otherwise
// the given order is kept. Requests with an unrecognised status are left off the board.
func Build(requests []model.MaintenanceRequest, equipment []model.Equipment) View {
	index := model.IndexEquipment(equipment)

	byStatus := make(map[model.Status][]Card, len(Columns))
	for _, req := range requests {
		byStatus[req.Status] = append(byStatus[req.Status], Card{
			MaintenanceRequest: req,
			EquipmentName:      model.EquipmentName(index, req.EquipmentID),
		})
	}

	view := View{Lanes: make([]Lane, 0, len(Columns))}
	for _, col := range Columns {
		cards := byStatus[col.Status]
		if cards == nil {
			cards = []Card{}
		}
		sort.SliceStable(cards, func(i, j int) bool {
			return cards[i].IsOverdue && !cards[j].IsOverdue
		})
		view.Lanes = append(view.Lanes, Lane{Column: col, Count: len(cards), Cards: cards})
	}
	return view
}
