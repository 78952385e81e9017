package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/repository"
	"telegram-payment-notifier/internal/infra/metrics"
	"telegram-payment-notifier/internal/infra/worker"
)

// CreateAction recreates the payment described by a due task and returns the
// new payment. Each invocation mints a fresh idempotence key inside the
// gateway, so the provider treats every attempt as a new payment.
type CreateAction func(ctx context.Context, task *model.RetryTask) (*model.Payment, error)

// OnSuccess fires after a task's recreation succeeded.
type OnSuccess func(ctx context.Context, task *model.RetryTask, payment *model.Payment)

// OnExhausted fires after a task failed MaxAttempts times and was dropped.
type OnExhausted func(ctx context.Context, task *model.RetryTask)

// RetryScheduler runs scheduled payment recreations off the request path.
// Tasks live in a durable store keyed by the canceled payment's ID; a ticker
// scans for due tasks and hands execution to the worker pool. A failed
// attempt re-arms the task at now+delay until attempts are exhausted.
type RetryScheduler struct {
	tasks       repository.RetryTaskStore
	pool        *worker.Pool
	action      CreateAction
	onSuccess   OnSuccess
	onExhausted OnExhausted
	tick        time.Duration
	delay       time.Duration
	log         *zerolog.Logger
}

func NewRetryScheduler(
	tasks repository.RetryTaskStore,
	pool *worker.Pool,
	action CreateAction,
	onSuccess OnSuccess,
	onExhausted OnExhausted,
	tick, delay time.Duration,
	log *zerolog.Logger,
) *RetryScheduler {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	if delay <= 0 {
		delay = 24 * time.Hour
	}
	return &RetryScheduler{
		tasks:       tasks,
		pool:        pool,
		action:      action,
		onSuccess:   onSuccess,
		onExhausted: onExhausted,
		tick:        tick,
		delay:       delay,
		log:         log,
	}
}

// Schedule arms a recreation task. The first attempt fires on the next scan.
// Scheduling again for the same payment re-arms the existing slot.
func (s *RetryScheduler) Schedule(ctx context.Context, task *model.RetryTask) error {
	if task == nil || task.PaymentID == "" {
		return domain.ErrInvalidArgument
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.NextAttemptAt.IsZero() {
		task.NextAttemptAt = now
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return err
	}
	metrics.IncRetryScheduled()
	s.log.Info().Str("payment_id", task.PaymentID).Int("max_attempts", task.MaxAttempts).Msg("retry scheduled")
	return nil
}

// Cancel drops a pending task, e.g. when the payer completed the payment
// through another channel before the retry fired.
func (s *RetryScheduler) Cancel(ctx context.Context, paymentID string) error {
	if err := s.tasks.Delete(ctx, paymentID); err != nil {
		return err
	}
	metrics.IncRetryOutcome("canceled")
	s.log.Info().Str("payment_id", paymentID).Msg("retry canceled")
	return nil
}

// List returns all pending tasks ordered by next attempt time.
func (s *RetryScheduler) List(ctx context.Context) ([]*model.RetryTask, error) {
	return s.tasks.List(ctx)
}

// Start runs the scan loop until ctx is canceled.
func (s *RetryScheduler) Start(ctx context.Context) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	s.log.Info().Dur("tick", s.tick).Dur("delay", s.delay).Msg("retry scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("retry scheduler stopped")
			return
		case <-t.C:
			s.scan(ctx)
		}
	}
}

func (s *RetryScheduler) scan(ctx context.Context) {
	due, err := s.tasks.ListDue(ctx, time.Now(), 100)
	if err != nil {
		s.log.Error().Err(err).Msg("retry scheduler: list due tasks")
		return
	}
	for _, task := range due {
		task := task
		run := func(ctx context.Context) error {
			s.execute(ctx, task)
			return nil
		}
		if s.pool == nil {
			_ = run(ctx)
			continue
		}
		if err := s.pool.Submit(run); err != nil {
			// queue full; the task stays due and the next scan picks it up
			s.log.Warn().Str("payment_id", task.PaymentID).Err(err).Msg("retry scheduler: submit")
		}
	}
}

// execute runs a single attempt. A fresh payment means the task is done; a
// failure either re-arms the task or, once attempts run out, drops it.
func (s *RetryScheduler) execute(ctx context.Context, task *model.RetryTask) {
	payment, err := s.action(ctx, task)
	if err == nil {
		if delErr := s.tasks.Delete(ctx, task.PaymentID); delErr != nil && !errors.Is(delErr, domain.ErrTaskNotFound) {
			s.log.Error().Str("payment_id", task.PaymentID).Err(delErr).Msg("retry scheduler: delete done task")
		}
		metrics.IncRetryOutcome("succeeded")
		s.log.Info().Str("payment_id", task.PaymentID).Str("new_payment_id", payment.ID).Int("attempt", task.Attempt+1).Msg("retry succeeded")
		if s.onSuccess != nil {
			s.onSuccess(ctx, task, payment)
		}
		return
	}

	task.Attempt++
	if task.Attempt >= task.MaxAttempts {
		if delErr := s.tasks.Delete(ctx, task.PaymentID); delErr != nil && !errors.Is(delErr, domain.ErrTaskNotFound) {
			s.log.Error().Str("payment_id", task.PaymentID).Err(delErr).Msg("retry scheduler: delete exhausted task")
		}
		metrics.IncRetryOutcome("exhausted")
		s.log.Warn().Str("payment_id", task.PaymentID).Int("attempts", task.Attempt).Err(err).Msg("retry exhausted")
		if s.onExhausted != nil {
			s.onExhausted(ctx, task)
		}
		return
	}

	task.NextAttemptAt = time.Now().Add(s.delay)
	if saveErr := s.tasks.Save(ctx, task); saveErr != nil {
		s.log.Error().Str("payment_id", task.PaymentID).Err(saveErr).Msg("retry scheduler: re-arm task")
		return
	}
	metrics.IncRetryOutcome("failed_attempt")
	s.log.Warn().
		Str("payment_id", task.PaymentID).
		Int("attempt", task.Attempt).
		Int("max_attempts", task.MaxAttempts).
		Time("next_attempt_at", task.NextAttemptAt).
		Err(err).
		Msg("retry attempt failed")
}
