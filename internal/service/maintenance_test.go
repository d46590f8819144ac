package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/metrics"
	"gearguard/internal/model"
	"gearguard/internal/repository"
	"gearguard/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// MockNotificationService is a mock implementation of NotificationService
type MockNotificationService struct {
	SendMaintenanceNotificationFunc func(ctx context.Context, event MaintenanceEvent) error

	mu     sync.Mutex
	events []MaintenanceEvent
}

func (m *MockNotificationService) SendMaintenanceNotification(ctx context.Context, event MaintenanceEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.SendMaintenanceNotificationFunc != nil {
		return m.SendMaintenanceNotificationFunc(ctx, event)
	}
	return nil
}

func (m *MockNotificationService) Events() []MaintenanceEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MaintenanceEvent(nil), m.events...)
}

type testEnv struct {
	service  *MaintenanceService
	store    *repository.MemStore
	notifier *MockNotificationService
	registry *prom.Registry
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := repository.NewMemStore(repository.WithClock(clock))
	notifier := &MockNotificationService{}
	registry := prom.NewRegistry()
	svc := NewMaintenanceService(store, notifier, metrics.NewRecorder(registry), zap.NewNop(), WithClock(clock))
	return &testEnv{service: svc, store: store, notifier: notifier, registry: registry}
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.service.Drain(ctx))
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func validEquipment() CreateEquipmentInput {
	return CreateEquipmentInput{Name: "Press", SerialNumber: "P-1", Department: "Ops", AssignedTeam: "Alpha"}
}

func TestMaintenanceService_PressLeakScenario(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	eq, err := env.service.CreateEquipment(ctx, validEquipment())
	require.NoError(t, err)
	assert.Equal(t, 1, eq.ID)
	assert.False(t, eq.IsUnderRepair)

	created, err := env.service.CreateRequest(ctx, CreateRequestInput{
		Title:         "Leak",
		EquipmentID:   intPtr(1),
		Status:        "new",
		ScheduledDate: fixedNow.Add(-24 * time.Hour).Format(time.RFC3339),
		Technician:    "A",
		Priority:      "high",
		Type:          "corrective",
		DurationHours: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.True(t, created.IsOverdue)

	updated, err := env.service.UpdateRequest(ctx, 1, UpdateRequestInput{Status: strPtr("repaired")})
	require.NoError(t, err)
	assert.False(t, updated.IsOverdue)
	assert.Equal(t, model.StatusRepaired, updated.Status)

	expected := created
	expected.Status = model.StatusRepaired
	expected.IsOverdue = false
	assert.Equal(t, expected, updated)

	env.drain(t)
	events := env.notifier.Events()
	require.Len(t, events, 2)
	byType := make(map[EventType]MaintenanceEvent, len(events))
	for _, ev := range events {
		byType[ev.Type] = ev
	}
	require.Contains(t, byType, EventRequestOverdue)
	assert.Equal(t, "Press", byType[EventRequestOverdue].EquipmentName)
	require.Contains(t, byType, EventStatusChanged)
	assert.Equal(t, model.StatusNew, byType[EventStatusChanged].PreviousStatus)
}

func TestMaintenanceService_CreateEquipment_Validation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(in *CreateEquipmentInput)
		expectedField string
	}{
		{"missing name", func(in *CreateEquipmentInput) { in.Name = "" }, "name"},
		{"blank serial", func(in *CreateEquipmentInput) { in.SerialNumber = "   " }, "serialNumber"},
		{"missing department", func(in *CreateEquipmentInput) { in.Department = "" }, "department"},
		{"missing team", func(in *CreateEquipmentInput) { in.AssignedTeam = "" }, "assignedTeam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestService(t)
			input := validEquipment()
			tt.mutate(&input)

			_, err := env.service.CreateEquipment(context.Background(), input)

			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorCodeValidation, appErr.Code)
			assert.Equal(t, tt.expectedField, appErr.Field)
			assert.Empty(t, env.store.ListEquipment())
		})
	}
}

func TestMaintenanceService_CreateRequest_Defaults(t *testing.T) {
	env := setupTestService(t)

	req, err := env.service.CreateRequest(context.Background(), CreateRequestInput{
		Title:         "Inspection",
		EquipmentID:   intPtr(42),
		ScheduledDate: "2025-03-20",
		Technician:    "B",
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, req.Status)
	assert.Equal(t, model.PriorityMedium, req.Priority)
	assert.Equal(t, model.TypeCorrective, req.Type)
	assert.Equal(t, 1, req.DurationHours)
	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), req.ScheduledDate)
	assert.False(t, req.IsOverdue)

	expected := `
# HELP gearguard_maintenance_requests_created_total Maintenance requests created by type
# TYPE gearguard_maintenance_requests_created_total counter
gearguard_maintenance_requests_created_total{type="corrective"} 1
`
	require.NoError(t, testutil.GatherAndCompare(env.registry, strings.NewReader(expected), "gearguard_maintenance_requests_created_total"))

	env.drain(t)
	assert.Empty(t, env.notifier.Events())
}

func TestMaintenanceService_CreateRequest_Validation(t *testing.T) {
	base := func() CreateRequestInput {
		return CreateRequestInput{
			Title:         "Leak",
			EquipmentID:   intPtr(1),
			ScheduledDate: "2025-03-09",
			Technician:    "A",
		}
	}

	tests := []struct {
		name          string
		mutate        func(in *CreateRequestInput)
		expectedField string
	}{
		{"missing title", func(in *CreateRequestInput) { in.Title = " " }, "title"},
		{"missing equipment", func(in *CreateRequestInput) { in.EquipmentID = nil }, "equipmentId"},
		{"bad status", func(in *CreateRequestInput) { in.Status = "done" }, "status"},
		{"missing date", func(in *CreateRequestInput) { in.ScheduledDate = "" }, "scheduledDate"},
		{"unparseable date", func(in *CreateRequestInput) { in.ScheduledDate = "next tuesday" }, "scheduledDate"},
		{"missing technician", func(in *CreateRequestInput) { in.Technician = "" }, "technician"},
		{"bad priority", func(in *CreateRequestInput) { in.Priority = "urgent" }, "priority"},
		{"bad type", func(in *CreateRequestInput) { in.Type = "emergency" }, "type"},
		{"zero duration", func(in *CreateRequestInput) { in.DurationHours = intPtr(0) }, "durationHours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestService(t)
			input := base()
			tt.mutate(&input)

			_, err := env.service.CreateRequest(context.Background(), input)

			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorCodeValidation, appErr.Code)
			assert.Equal(t, tt.expectedField, appErr.Field)
			assert.Empty(t, env.store.ListMaintenanceRequests())
		})
	}
}

func TestMaintenanceService_UpdateRequest(t *testing.T) {
	t.Run("unknown id is not found", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)
		before := env.store.ListMaintenanceRequests()

		_, err := env.service.UpdateRequest(context.Background(), 999, UpdateRequestInput{Status: strPtr("repaired")})

		assert.True(t, errors.IsNotFound(err))
		assert.Equal(t, "Request not found", err.(*errors.AppError).Message)
		assert.Equal(t, before, env.store.ListMaintenanceRequests())
	})

	t.Run("equipmentId is rejected", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		_, err := env.service.UpdateRequest(context.Background(), 1, UpdateRequestInput{EquipmentID: intPtr(2)})

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "equipmentId", appErr.Field)
		req, _ := env.store.GetMaintenanceRequest(1)
		assert.Equal(t, 1, req.EquipmentID)
	})

	t.Run("unchanged equipmentId is accepted", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		updated, err := env.service.UpdateRequest(context.Background(), 1, UpdateRequestInput{
			EquipmentID: intPtr(1),
			Title:       strPtr("Oil leak, piston seal"),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, updated.EquipmentID)
		assert.Equal(t, "Oil leak, piston seal", updated.Title)
	})

	t.Run("equipmentId on unknown request is not found", func(t *testing.T) {
		env := setupTestService(t)

		_, err := env.service.UpdateRequest(context.Background(), 5, UpdateRequestInput{EquipmentID: intPtr(1)})

		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("present fields are validated", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		_, err := env.service.UpdateRequest(context.Background(), 1, UpdateRequestInput{DurationHours: intPtr(-1)})

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "durationHours", appErr.Field)
	})

	t.Run("rescheduling recomputes overdue", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		updated, err := env.service.UpdateRequest(context.Background(), 1, UpdateRequestInput{ScheduledDate: strPtr("2025-04-01")})

		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, updated.Status)
		assert.False(t, updated.IsOverdue)
		env.drain(t)
		assert.Empty(t, env.notifier.Events())
	})

	t.Run("scrap raises a warning event", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		_, err := env.service.UpdateRequest(context.Background(), 2, UpdateRequestInput{Status: strPtr("scrap")})

		require.NoError(t, err)
		env.drain(t)
		events := env.notifier.Events()
		require.Len(t, events, 1)
		assert.Equal(t, EventRequestScrapped, events[0].Type)
		assert.Equal(t, "Hydraulic Press X1", events[0].EquipmentName)
	})
}

func TestMaintenanceService_MoveRequest(t *testing.T) {
	t.Run("move to column", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		result, err := env.service.MoveRequest(context.Background(), 1, MoveInput{Column: "repaired"})

		require.NoError(t, err)
		assert.True(t, result.Moved)
		assert.Equal(t, model.StatusInProgress, result.From)
		assert.Equal(t, model.StatusRepaired, result.To)
		assert.False(t, result.Request.IsOverdue)
		env.drain(t)
		require.Len(t, env.notifier.Events(), 1)
	})

	t.Run("drop on own column is a no-op", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)
		before := env.store.ListMaintenanceRequests()

		result, err := env.service.MoveRequest(context.Background(), 2, MoveInput{Column: "new"})

		require.NoError(t, err)
		assert.False(t, result.Moved)
		assert.Equal(t, before, env.store.ListMaintenanceRequests())
		env.drain(t)
		assert.Empty(t, env.notifier.Events())
	})

	t.Run("drop over a card takes its column", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		result, err := env.service.MoveRequest(context.Background(), 2, MoveInput{OverCardID: intPtr(3)})

		require.NoError(t, err)
		assert.True(t, result.Moved)
		assert.Equal(t, model.StatusRepaired, result.To)
	})

	t.Run("unknown column", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		_, err := env.service.MoveRequest(context.Background(), 1, MoveInput{Column: "archive"})

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorCodeValidation, appErr.Code)
		assert.Equal(t, "column", appErr.Field)
	})

	t.Run("missing target", func(t *testing.T) {
		env := setupTestService(t)
		repository.Seed(env.store, fixedNow)

		_, err := env.service.MoveRequest(context.Background(), 1, MoveInput{})

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "column", appErr.Field)
	})

	t.Run("unknown card", func(t *testing.T) {
		env := setupTestService(t)

		_, err := env.service.MoveRequest(context.Background(), 7, MoveInput{Column: "new"})

		assert.True(t, errors.IsNotFound(err))
	})
}

func TestMaintenanceService_NotificationFailureIsLogged(t *testing.T) {
	env := setupTestService(t)
	env.notifier.SendMaintenanceNotificationFunc = func(ctx context.Context, event MaintenanceEvent) error {
		return fmt.Errorf("webhook down")
	}
	repository.Seed(env.store, fixedNow)

	_, err := env.service.MoveRequest(context.Background(), 2, MoveInput{Column: "in_progress"})
	require.NoError(t, err)

	env.drain(t)
	assert.Len(t, env.notifier.Events(), 1)
}

func TestMaintenanceService_NilNotifier(t *testing.T) {
	store := repository.NewMemStore()
	svc := NewMaintenanceService(store, nil, nil, nil)
	repository.Seed(store, time.Now())

	_, err := svc.MoveRequest(context.Background(), 2, MoveInput{Column: "scrap"})
	require.NoError(t, err)
	require.NoError(t, svc.Drain(context.Background()))
	assert.Equal(t, NotifierDisabled, svc.NotifierHealth(context.Background()))
}

type checkingNotificationService struct {
	MockNotificationService
	health string
}

func (p *checkingNotificationService) NotifierHealth(ctx context.Context) string { return p.health }

func TestMaintenanceService_NotifierHealth(t *testing.T) {
	store := repository.NewMemStore()

	withoutCheck := NewMaintenanceService(store, &MockNotificationService{}, nil, nil)
	assert.Equal(t, NotifierUnknown, withoutCheck.NotifierHealth(context.Background()))

	withCheck := NewMaintenanceService(store, &checkingNotificationService{health: "unreachable"}, nil, nil)
	assert.Equal(t, "unreachable", withCheck.NotifierHealth(context.Background()))
}

func TestMaintenanceService_ListEquipment_Search(t *testing.T) {
	env := setupTestService(t)
	repository.Seed(env.store, fixedNow)
	ctx := context.Background()

	assert.Len(t, env.service.ListEquipment(ctx, ""), 5)

	logistics := env.service.ListEquipment(ctx, "LOGIST")
	require.Len(t, logistics, 2)
	assert.Equal(t, "Conveyor Belt System", logistics[0].Name)
	assert.Equal(t, "Forklift MK-4", logistics[1].Name)

	byName := env.service.ListEquipment(ctx, "cnc")
	require.Len(t, byName, 1)
	assert.Equal(t, 3, byName[0].ID)

	assert.Empty(t, env.service.ListEquipment(ctx, "zzz"))
}

func TestMaintenanceService_GetEquipment_NotFound(t *testing.T) {
	env := setupTestService(t)

	_, err := env.service.GetEquipment(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Equipment not found", err.(*errors.AppError).Message)
}

func TestMaintenanceService_BoardAndReport(t *testing.T) {
	env := setupTestService(t)
	repository.Seed(env.store, fixedNow)
	ctx := context.Background()

	view := env.service.Board(ctx)
	require.Len(t, view.Lanes, 4)
	assert.Equal(t, 4, view.Lanes[0].Count)
	assert.Equal(t, 2, view.Lanes[1].Count)
	assert.True(t, view.Lanes[1].Cards[0].IsOverdue)

	report := env.service.Report(ctx)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, 8, report.Totals.Total)
	assert.Equal(t, 2, report.Overdue)
}

func TestMaintenanceService_Calendar(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	_, err := env.service.CreateRequest(ctx, CreateRequestInput{
		Title: "Lubrication", EquipmentID: intPtr(1), ScheduledDate: "2025-03-15", Technician: "A", Type: "preventive",
	})
	require.NoError(t, err)

	cal, err := env.service.Calendar(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 3, cal.Month)
	require.Len(t, cal.Days, 1)
	assert.Equal(t, "2025-03-15", cal.Days[0].Date)

	_, err = env.service.Calendar(ctx, 2025, 13)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "month", appErr.Field)
}
