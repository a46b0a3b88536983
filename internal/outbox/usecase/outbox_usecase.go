// Package usecase dispatches security events from the transactional outbox.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/allisson/permguard/internal/database"
	"github.com/allisson/permguard/internal/metrics"
	"github.com/allisson/permguard/internal/outbox/domain"
)

// Config holds outbox dispatcher configuration.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor handles a single outbox event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase polls pending events and hands them to an EventProcessor.
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start runs the polling loop until ctx is done.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox dispatcher",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox dispatcher")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process outbox events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents processes one batch of pending events inside a transaction.
// A failing event is retried on later batches until MaxRetries is reached.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing outbox events", slog.Int("count", len(events)))

		for _, event := range events {
			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				uc.logger.Error("failed to process outbox event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Any("error", err),
				)

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg
				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			now := time.Now().UTC()
			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// SecurityEventProcessor writes each security event to the structured log
// and counts it.
type SecurityEventProcessor struct {
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
}

// NewSecurityEventProcessor creates a new SecurityEventProcessor
func NewSecurityEventProcessor(logger *slog.Logger, m metrics.BusinessMetrics) *SecurityEventProcessor {
	return &SecurityEventProcessor{
		logger:  logger,
		metrics: m,
	}
}

// Process logs the event. Unknown event types are logged as warnings but not failed.
func (p *SecurityEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	var payload map[string]any
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return err
	}

	switch event.EventType {
	case domain.EventUserRegistered,
		domain.EventUserPasswordChanged,
		domain.EventSecurityStampRotated,
		domain.EventUserRoleAssigned,
		domain.EventUserRoleRemoved,
		domain.EventUserClaimAdded,
		domain.EventUserClaimRemoved,
		domain.EventRoleCreated,
		domain.EventRoleDeleted,
		domain.EventRoleClaimAdded,
		domain.EventRoleClaimRemoved:
		p.logger.Info("security event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.Time("created_at", event.CreatedAt),
			slog.Any("payload", payload),
		)
		p.metrics.RecordOperation(ctx, "outbox", event.EventType, "processed")
	default:
		p.logger.Warn("unknown outbox event type", slog.String("event_type", event.EventType))
		p.metrics.RecordOperation(ctx, "outbox", "unknown", "skipped")
	}

	return nil
}
