package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// Settler finishes withdrawals that the ledger left in processing.
type Settler interface {
	Settle(ctx context.Context, transactionID string) error
	Fail(ctx context.Context, transactionID, reason string) error
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Worker drains the outbox. Withdrawal requests are settled through the
// ledger before their event leaves the box; everything else is published
// as-is.
type Worker struct {
	outboxRepo usecase.OutboxRepository
	settler    Settler
	publisher  Publisher
	logger     *slog.Logger
	batchSize  int
	interval   time.Duration
}

// Config for Worker.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Settler    Settler
	Publisher  Publisher
	Logger     *slog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
}

// NewWorker creates a new settlement Worker.
func NewWorker(cfg Config) *Worker {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Worker{
		outboxRepo: cfg.OutboxRepo,
		settler:    cfg.Settler,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
	}
}

// Start begins the settlement worker.
// It runs continuously until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("settlement worker started",
		slog.Int("batch_size", w.batchSize),
		slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start
	if err := w.processEvents(ctx); err != nil {
		w.logger.Error("error processing events on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("settlement worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processEvents(ctx); err != nil {
				w.logger.Error("error processing events", slog.String("error", err.Error()))
			}
		}
	}
}

// processEvents fetches and handles a batch of unpublished events.
func (w *Worker) processEvents(ctx context.Context) error {
	events, err := w.outboxRepo.GetUnpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	w.logger.Info("processing events", slog.Int("count", len(events)))

	for _, event := range events {
		if err := w.handleEvent(ctx, event); err != nil {
			w.logger.Error("failed to handle event",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.EventType),
				slog.String("error", err.Error()))
			// Leave unpublished; the next tick retries it.
			continue
		}

		if err := w.outboxRepo.MarkPublished(ctx, event.ID, time.Now()); err != nil {
			w.logger.Error("failed to mark event as published",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
			// Don't continue - we don't want to re-handle this event
		}
	}

	return nil
}

// handleEvent settles withdrawal requests and publishes the event.
func (w *Worker) handleEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if event.EventType == domain.EventTypeWithdrawalRequested {
		return w.settleWithdrawal(ctx, event)
	}

	if err := w.publisher.Publish(ctx, event); err != nil {
		return err
	}

	w.logger.Info("event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType))

	return nil
}

// settleWithdrawal hands the payout off to the publisher, then completes
// the withdrawal. A rejected hand-off fails the withdrawal and reverses
// the debit instead.
func (w *Worker) settleWithdrawal(ctx context.Context, event *domain.OutboxEvent) error {
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Error("payout hand-off rejected, failing withdrawal",
			slog.String("transaction_id", event.AggregateID),
			slog.String("error", err.Error()))

		failErr := w.settler.Fail(ctx, event.AggregateID, err.Error())
		if failErr != nil && !errors.Is(failErr, domain.ErrTransactionFinal) {
			return failErr
		}
		return nil
	}

	err := w.settler.Settle(ctx, event.AggregateID)
	switch {
	case err == nil:
		w.logger.Info("withdrawal settled",
			slog.String("transaction_id", event.AggregateID))
		return nil
	case errors.Is(err, domain.ErrTransactionFinal):
		// Settled on an earlier pass whose MarkPublished failed.
		w.logger.Warn("withdrawal already settled",
			slog.String("transaction_id", event.AggregateID))
		return nil
	case errors.Is(err, domain.ErrTransactionNotFound):
		w.logger.Warn("withdrawal transaction no longer exists, dropping event",
			slog.String("transaction_id", event.AggregateID))
		return nil
	default:
		return err
	}
}

// RetryingSettler wraps a Settler with a retry policy. Settlement runs
// concurrently with interactive money movement on the same wallet rows,
// so lost lock races are expected and worth a few attempts.
type RetryingSettler struct {
	inner Settler
	retry func(ctx context.Context, operation func() error) error
}

// NewRetryingSettler creates a RetryingSettler.
func NewRetryingSettler(inner Settler, retry func(ctx context.Context, operation func() error) error) *RetryingSettler {
	return &RetryingSettler{inner: inner, retry: retry}
}

// Settle retries the wrapped Settle.
func (s *RetryingSettler) Settle(ctx context.Context, transactionID string) error {
	return s.retry(ctx, func() error {
		return s.inner.Settle(ctx, transactionID)
	})
}

// Fail retries the wrapped Fail.
func (s *RetryingSettler) Fail(ctx context.Context, transactionID, reason string) error {
	return s.retry(ctx, func() error {
		return s.inner.Fail(ctx, transactionID, reason)
	})
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info("EVENT PUBLISHED",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_type", event.AggregateType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("payload", string(payload)))

	return nil
}
