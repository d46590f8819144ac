package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"gearguard/internal/analytics"
	"gearguard/internal/board"
	"gearguard/internal/metrics"
	"gearguard/internal/model"
	"gearguard/internal/repository"
	"gearguard/pkg/errors"
	"gearguard/pkg/validation"
)

const defaultNotifyTimeout = 30 * time.Second

// MaintenanceService handles business logic for equipment, maintenance requests and the board
type MaintenanceService struct {
	store     repository.Store
	validator *validation.Validator
	notifier  NotificationService
	recorder  *metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// Option configures a MaintenanceService.
type Option func(*MaintenanceService)

// WithClock overrides the clock used for report timestamps and the default calendar month.
func WithClock(now func() time.Time) Option {
	return func(s *MaintenanceService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifyTimeout bounds each asynchronous notification delivery.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *MaintenanceService) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewMaintenanceService creates a new maintenance service. notifier and recorder may be nil.
func NewMaintenanceService(store repository.Store, notifier NotificationService, recorder *metrics.Recorder, logger *zap.Logger, opts ...Option) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MaintenanceService{
		store:         store,
		validator:     validation.New(),
		notifier:      notifier,
		recorder:      recorder,
		logger:        logger,
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEquipment returns all equipment, optionally filtered by a case-insensitive match on name or department
func (s *MaintenanceService) ListEquipment(ctx context.Context, search string) []model.Equipment {
	items := s.store.ListEquipment()

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}

	filtered := make([]model.Equipment, 0, len(items))
	for _, eq := range items {
		if strings.Contains(strings.ToLower(eq.Name), search) || strings.Contains(strings.ToLower(eq.Department), search) {
			filtered = append(filtered, eq)
		}
	}
	return filtered
}

// GetEquipment retrieves equipment by its ID
func (s *MaintenanceService) GetEquipment(ctx context.Context, id int) (model.Equipment, error) {
	eq, err := s.store.GetEquipment(id)
	if err != nil {
		return model.Equipment{}, s.mapStoreError(err)
	}
	return eq, nil
}

// CreateEquipment validates and registers a new piece of equipment
func (s *MaintenanceService) CreateEquipment(ctx context.Context, input CreateEquipmentInput) (model.Equipment, error) {
	if err := s.validator.Struct(input); err != nil {
		return model.Equipment{}, err
	}

	eq := s.store.CreateEquipment(input.toModel())

	s.logger.Info("Equipment created",
		zap.Int("equipment_id", eq.ID),
		zap.String("name", eq.Name),
		zap.String("department", eq.Department))

	return eq, nil
}

// ListRequests returns every maintenance request in creation order
func (s *MaintenanceService) ListRequests(ctx context.Context) []model.MaintenanceRequest {
	return s.store.ListMaintenanceRequests()
}

// CreateRequest validates and opens a maintenance request
func (s *MaintenanceService) CreateRequest(ctx context.Context, input CreateRequestInput) (model.MaintenanceRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return model.MaintenanceRequest{}, err
	}
	newReq, err := input.toModel()
	if err != nil {
		return model.MaintenanceRequest{}, err
	}

	req := s.store.CreateMaintenanceRequest(newReq)
	s.recorder.IncRequestCreated(req.Type)

	s.logger.Info("Maintenance request created",
		zap.Int("request_id", req.ID),
		zap.Int("equipment_id", req.EquipmentID),
		zap.String("status", string(req.Status)),
		zap.Bool("overdue", req.IsOverdue))

	if req.IsOverdue {
		s.notifyAsync(MaintenanceEvent{
			Type:          EventRequestOverdue,
			Request:       req,
			EquipmentName: s.equipmentName(req.EquipmentID),
			Message:       fmt.Sprintf("Request #%d %q was created already overdue (scheduled %s)", req.ID, req.Title, req.ScheduledDate.Format("2006-01-02")),
		})
	}

	return req, nil
}

// UpdateRequest applies a partial update to a maintenance request
func (s *MaintenanceService) UpdateRequest(ctx context.Context, id int, input UpdateRequestInput) (model.MaintenanceRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return model.MaintenanceRequest{}, err
	}
	patch, err := input.toPatch()
	if err != nil {
		return model.MaintenanceRequest{}, err
	}

	// Read-then-update is not atomic; a concurrent write may land in between.
	var previous model.Status
	if patch.Status != nil || input.EquipmentID != nil {
		existing, err := s.store.GetMaintenanceRequest(id)
		if err != nil {
			return model.MaintenanceRequest{}, s.mapStoreError(err)
		}
		// Echoing the stored equipmentId back is allowed; changing it is not.
		if input.EquipmentID != nil && *input.EquipmentID != existing.EquipmentID {
			return model.MaintenanceRequest{}, errors.FieldValidationError("equipmentId", "equipmentId cannot be changed")
		}
		previous = existing.Status
	}

	updated, err := s.store.UpdateMaintenanceRequest(id, patch)
	if err != nil {
		return model.MaintenanceRequest{}, s.mapStoreError(err)
	}

	s.logger.Info("Maintenance request updated",
		zap.Int("request_id", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.Bool("overdue", updated.IsOverdue))

	if patch.Status != nil && previous != updated.Status {
		s.recorder.IncBoardTransition(previous, updated.Status)
		s.notifyStatusChange(previous, updated)
	}

	return updated, nil
}

// MoveRequest applies a board drop to a card
func (s *MaintenanceService) MoveRequest(ctx context.Context, id int, input MoveInput) (board.MoveResult, error) {
	if err := s.validator.Struct(input); err != nil {
		return board.MoveResult{}, err
	}

	target := board.Target{Column: model.Status(input.Column)}
	if input.OverCardID != nil {
		target.OverCardID = *input.OverCardID
	}

	result, err := board.Move(s.store, id, target)
	if err != nil {
		if stderrors.Is(err, board.ErrUnknownColumn) {
			return board.MoveResult{}, errors.FieldValidationError("column", columnMessage())
		}
		return board.MoveResult{}, s.mapStoreError(err)
	}

	if !result.Moved {
		s.logger.Debug("Board drop left card in place",
			zap.Int("request_id", id),
			zap.String("status", string(result.From)))
		return result, nil
	}

	s.logger.Info("Card moved",
		zap.Int("request_id", id),
		zap.String("from", string(result.From)),
		zap.String("to", string(result.To)))

	s.recorder.IncBoardTransition(result.From, result.To)
	s.notifyStatusChange(result.From, result.Request)

	return result, nil
}

// Board returns the Kanban view of all requests
func (s *MaintenanceService) Board(ctx context.Context) board.View {
	return board.Build(s.store.ListMaintenanceRequests(), s.store.ListEquipment())
}

// Report returns the pivot analytics over all requests
func (s *MaintenanceService) Report(ctx context.Context) analytics.Report {
	return analytics.Summarize(s.store.ListMaintenanceRequests(), s.store.ListEquipment(), s.now().UTC())
}

// Calendar returns the preventive schedule for a month. Zero year or month means the current one.
func (s *MaintenanceService) Calendar(ctx context.Context, year, month int) (analytics.Calendar, error) {
	now := s.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if year < 1 || year > 9999 {
		return analytics.Calendar{}, errors.FieldValidationError("year", "year must be between 1 and 9999")
	}
	if month < 1 || month > 12 {
		return analytics.Calendar{}, errors.FieldValidationError("month", "month must be between 1 and 12")
	}

	return analytics.MonthCalendar(s.store.ListMaintenanceRequests(), s.store.ListEquipment(), year, time.Month(month)), nil
}

// NotifierHealth reports whether notifications can currently be delivered
func (s *MaintenanceService) NotifierHealth(ctx context.Context) string {
	if s.notifier == nil {
		return NotifierDisabled
	}
	reporter, ok := s.notifier.(HealthReporter)
	if !ok {
		return NotifierUnknown
	}
	return reporter.NotifierHealth(ctx)
}

// Drain waits for in-flight notifications, or until ctx is done.
func (s *MaintenanceService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MaintenanceService) mapStoreError(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrEquipmentNotFound):
		return errors.NotFoundError("Equipment")
	case stderrors.Is(err, repository.ErrMaintenanceRequestNotFound):
		return errors.NotFoundError("Request")
	default:
		return errors.InternalError("store operation failed", err)
	}
}

func (s *MaintenanceService) equipmentName(id int) string {
	eq, err := s.store.GetEquipment(id)
	if err != nil {
		return model.UnknownEquipmentName
	}
	return eq.Name
}

func columnMessage() string {
	names := make([]string, len(model.Statuses))
	for i, st := range model.Statuses {
		names[i] = string(st)
	}
	return "column must be one of: " + strings.Join(names, " ")
}

// Notification methods

func (s *MaintenanceService) notifyStatusChange(from model.Status, req model.MaintenanceRequest) {
	event := MaintenanceEvent{
		Type:           EventStatusChanged,
		Request:        req,
		EquipmentName:  s.equipmentName(req.EquipmentID),
		PreviousStatus: from,
	}
	if req.Status == model.StatusScrap {
		event.Type = EventRequestScrapped
		event.Message = fmt.Sprintf("Request #%d %q on %s moved to scrap", req.ID, req.Title, event.EquipmentName)
	} else {
		event.Message = fmt.Sprintf("Request #%d %q moved from %s to %s", req.ID, req.Title, from, req.Status)
	}
	s.notifyAsync(event)
}

func (s *MaintenanceService) notifyAsync(event MaintenanceEvent) {
	if s.notifier == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		err := s.notifier.SendMaintenanceNotification(ctx, event)
		s.recorder.IncNotification(err == nil)
		if err != nil {
			s.logger.Error("Failed to send maintenance notification",
				zap.String("event", string(event.Type)),
				zap.Int("request_id", event.Request.ID),
				zap.Error(err))
			return
		}
		s.logger.Debug("Maintenance notification sent",
			zap.String("event", string(event.Type)),
			zap.Int("request_id", event.Request.ID))
	}()
}
