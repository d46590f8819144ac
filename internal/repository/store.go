package repository

import (
	"errors"
	"sync"
	"time"

	"gearguard/internal/model"
)

// Custom errors for better error handling
var (
	ErrEquipmentNotFound          = errors.New("equipment not found")
	ErrMaintenanceRequestNotFound = errors.New("maintenance request not found")
)

// Store is the record store for equipment and maintenance requests.
// Every method runs as a single critical section; there are no cross-call transactions.
type Store interface {
	ListEquipment() []model.Equipment
	GetEquipment(id int) (model.Equipment, error)
	CreateEquipment(input model.NewEquipment) model.Equipment

	ListMaintenanceRequests() []model.MaintenanceRequest
	GetMaintenanceRequest(id int) (model.MaintenanceRequest, error)
	CreateMaintenanceRequest(input model.NewMaintenanceRequest) model.MaintenanceRequest
	UpdateMaintenanceRequest(id int, patch model.MaintenanceRequestPatch) (model.MaintenanceRequest, error)

	Counts() StoreCounts
}

// StoreCounts is a point-in-time summary of the store contents.
type StoreCounts struct {
	Equipment int
	Requests  int
	ByStatus  map[model.Status]int
	// Overdue counts requests whose last-written overdue flag is set.
	Overdue int
}

// Option configures a MemStore.
type Option func(*MemStore)

// WithClock overrides the wall clock used for overdue computation.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemStore keeps records in process memory. Data is lost on restart.
type MemStore struct {
	mu sync.RWMutex

	equipment      map[int]model.Equipment
	equipmentOrder []int
	nextEquipment  int

	requests     map[int]model.MaintenanceRequest
	requestOrder []int
	nextRequest  int

	now func() time.Time
}

// NewMemStore creates an empty store. Both id counters start at 1.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		equipment:     make(map[int]model.Equipment),
		nextEquipment: 1,
		requests:      make(map[int]model.MaintenanceRequest),
		nextRequest:   1,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*MemStore)(nil)

// ListEquipment returns all equipment in insertion order.
func (s *MemStore) ListEquipment() []model.Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Equipment, 0, len(s.equipmentOrder))
	for _, id := range s.equipmentOrder {
		items = append(items, s.equipment[id])
	}
	return items
}

// GetEquipment looks up a single piece of equipment.
func (s *MemStore) GetEquipment(id int) (model.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eq, ok := s.equipment[id]
	if !ok {
		return model.Equipment{}, ErrEquipmentNotFound
	}
	return eq, nil
}

// CreateEquipment allocates the next id and stores the record.
// Serial numbers are not required to be unique.
func (s *MemStore) CreateEquipment(input model.NewEquipment) model.Equipment {
	s.mu.Lock()
	defer s.mu.Unlock()

	eq := model.Equipment{
		ID:            s.nextEquipment,
		Name:          input.Name,
		SerialNumber:  input.SerialNumber,
		Department:    input.Department,
		AssignedTeam:  input.AssignedTeam,
		IsUnderRepair: input.IsUnderRepair,
	}
	s.nextEquipment++

	s.equipment[eq.ID] = eq
	s.equipmentOrder = append(s.equipmentOrder, eq.ID)
	return eq
}

// ListMaintenanceRequests returns all requests in insertion order.
func (s *MemStore) ListMaintenanceRequests() []model.MaintenanceRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.MaintenanceRequest, 0, len(s.requestOrder))
	for _, id := range s.requestOrder {
		items = append(items, s.requests[id])
	}
	return items
}

// GetMaintenanceRequest looks up a single request.
func (s *MemStore) GetMaintenanceRequest(id int) (model.MaintenanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return model.MaintenanceRequest{}, ErrMaintenanceRequestNotFound
	}
	return req, nil
}

// CreateMaintenanceRequest allocates the next id, fills defaults and computes the overdue flag.
// Status is stored as given; defaulting it is the caller's job.
func (s *MemStore) CreateMaintenanceRequest(input model.NewMaintenanceRequest) model.MaintenanceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := model.MaintenanceRequest{
		ID:            s.nextRequest,
		Title:         input.Title,
		EquipmentID:   input.EquipmentID,
		Status:        input.Status,
		ScheduledDate: input.ScheduledDate,
		Technician:    input.Technician,
		Priority:      input.Priority,
		Type:          input.Type,
		DurationHours: input.DurationHours,
	}
	if req.Priority == "" {
		req.Priority = model.DefaultPriority
	}
	if req.Type == "" {
		req.Type = model.DefaultType
	}
	if req.DurationHours == 0 {
		req.DurationHours = model.DefaultDurationHours
	}
	req.IsOverdue = model.IsOverdue(req.ScheduledDate, req.Status, s.now())
	s.nextRequest++

	s.requests[req.ID] = req
	s.requestOrder = append(s.requestOrder, req.ID)
	return req
}

// UpdateMaintenanceRequest merges the patch onto the stored request and recomputes
// the overdue flag from the merged record. Unknown ids leave the store untouched.
func (s *MemStore) UpdateMaintenanceRequest(id int, patch model.MaintenanceRequestPatch) (model.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.requests[id]
	if !ok {
		return model.MaintenanceRequest{}, ErrMaintenanceRequestNotFound
	}

	merged := patch.Apply(existing)
	merged.IsOverdue = model.IsOverdue(merged.ScheduledDate, merged.Status, s.now())

	s.requests[id] = merged
	return merged, nil
}

// Counts summarises the store for metrics.
func (s *MemStore) Counts() StoreCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := StoreCounts{
		Equipment: len(s.equipment),
		Requests:  len(s.requests),
		ByStatus:  make(map[model.Status]int, len(model.Statuses)),
	}
	for _, req := range s.requests {
		counts.ByStatus[req.Status]++
		if req.IsOverdue {
			counts.Overdue++
		}
	}
	return counts
}
