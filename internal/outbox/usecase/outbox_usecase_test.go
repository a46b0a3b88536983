package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/permguard/internal/metrics"
	"github.com/allisson/permguard/internal/outbox/domain"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEventProcessor is a mock implementation of EventProcessor
type MockEventProcessor struct {
	mock.Mock
}

func (m *MockEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var testConfig = Config{
	Interval:   5 * time.Second,
	BatchSize:  10,
	MaxRetries: 3,
}

func pendingEvent(retries int) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: domain.EventUserRoleAssigned,
		Payload:   `{"user_id": "42", "role": "Editor"}`,
		Status:    domain.OutboxEventStatusPending,
		Retries:   retries,
	}
}

func TestOutboxUseCase_Start_ContextCancellation(t *testing.T) {
	uc := NewOutboxUseCase(
		Config{Interval: 100 * time.Millisecond, BatchSize: 10, MaxRetries: 3},
		&MockTxManager{}, &MockOutboxEventRepository{}, &MockEventProcessor{}, createTestLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.Start(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestOutboxUseCase_ProcessEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MarksEventsProcessed", func(t *testing.T) {
		txManager := &MockTxManager{}
		outboxRepo := &MockOutboxEventRepository{}
		processor := &MockEventProcessor{}
		uc := NewOutboxUseCase(testConfig, txManager, outboxRepo, processor, createTestLogger())

		events := []*domain.OutboxEvent{pendingEvent(0), pendingEvent(0)}

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		outboxRepo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return(events, nil)
		processor.On("Process", ctx, events[0]).Return(nil)
		processor.On("Process", ctx, events[1]).Return(nil)
		outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
			return e.Status == domain.OutboxEventStatusProcessed && e.ProcessedAt != nil
		})).Return(nil).Times(2)

		assert.NoError(t, uc.ProcessEvents(ctx))
		outboxRepo.AssertExpectations(t)
		processor.AssertExpectations(t)
	})

	t.Run("Success_NoEvents", func(t *testing.T) {
		txManager := &MockTxManager{}
		outboxRepo := &MockOutboxEventRepository{}
		uc := NewOutboxUseCase(testConfig, txManager, outboxRepo, &MockEventProcessor{}, createTestLogger())

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		outboxRepo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return([]*domain.OutboxEvent{}, nil)

		assert.NoError(t, uc.ProcessEvents(ctx))
		outboxRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Error_GetPendingEvents", func(t *testing.T) {
		txManager := &MockTxManager{}
		outboxRepo := &MockOutboxEventRepository{}
		uc := NewOutboxUseCase(testConfig, txManager, outboxRepo, &MockEventProcessor{}, createTestLogger())

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		outboxRepo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return(nil, errors.New("database error"))

		err := uc.ProcessEvents(ctx)
		assert.ErrorContains(t, err, "database error")
	})

	t.Run("Success_ProcessorErrorIsRecordedForRetry", func(t *testing.T) {
		txManager := &MockTxManager{}
		outboxRepo := &MockOutboxEventRepository{}
		processor := &MockEventProcessor{}
		uc := NewOutboxUseCase(testConfig, txManager, outboxRepo, processor, createTestLogger())

		event := pendingEvent(0)
		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		outboxRepo.On("GetPendingEvents", ctx, testConfig.BatchSize).
			Return([]*domain.OutboxEvent{event}, nil)
		processor.On("Process", ctx, event).Return(errors.New("processing failed"))
		outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
			return e.ID == event.ID && e.Retries == 1 && e.LastError != nil &&
				e.Status == domain.OutboxEventStatusPending
		})).Return(nil)

		assert.NoError(t, uc.ProcessEvents(ctx))
		outboxRepo.AssertExpectations(t)
	})

	t.Run("Success_MaxRetriesMarksFailed", func(t *testing.T) {
		txManager := &MockTxManager{}
		outboxRepo := &MockOutboxEventRepository{}
		processor := &MockEventProcessor{}
		uc := NewOutboxUseCase(testConfig, txManager, outboxRepo, processor, createTestLogger())

		event := pendingEvent(2)
		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		outboxRepo.On("GetPendingEvents", ctx, testConfig.BatchSize).
			Return([]*domain.OutboxEvent{event}, nil)
		processor.On("Process", ctx, event).Return(errors.New("processing failed"))
		outboxRepo.On("Update", ctx, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
			return e.Retries == 3 && e.Status == domain.OutboxEventStatusFailed
		})).Return(nil)

		assert.NoError(t, uc.ProcessEvents(ctx))
		outboxRepo.AssertExpectations(t)
	})

	t.Run("Error_Update", func(t *testing.T) {
		txManager := &MockTxManager{}
		outboxRepo := &MockOutboxEventRepository{}
		processor := &MockEventProcessor{}
		uc := NewOutboxUseCase(testConfig, txManager, outboxRepo, processor, createTestLogger())

		event := pendingEvent(0)
		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		outboxRepo.On("GetPendingEvents", ctx, testConfig.BatchSize).
			Return([]*domain.OutboxEvent{event}, nil)
		processor.On("Process", ctx, event).Return(nil)
		outboxRepo.On("Update", ctx, mock.AnythingOfType("*domain.OutboxEvent")).
			Return(errors.New("update failed"))

		assert.ErrorContains(t, uc.ProcessEvents(ctx), "update failed")
	})
}

func TestSecurityEventProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_KnownEvent", func(t *testing.T) {
		m := &MockBusinessMetrics{}
		m.On("RecordOperation", ctx, "outbox", domain.EventUserRoleAssigned, "processed").Return()

		err := NewSecurityEventProcessor(createTestLogger(), m).Process(ctx, pendingEvent(0))
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("Success_UnknownEventIsSkipped", func(t *testing.T) {
		event := pendingEvent(0)
		event.EventType = "unknown.event"

		err := NewSecurityEventProcessor(createTestLogger(), metrics.NewNoOpBusinessMetrics()).
			Process(ctx, event)
		assert.NoError(t, err)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		event := pendingEvent(0)
		event.Payload = "invalid json"

		err := NewSecurityEventProcessor(createTestLogger(), metrics.NewNoOpBusinessMetrics()).
			Process(ctx, event)
		assert.Error(t, err)
	})
}
