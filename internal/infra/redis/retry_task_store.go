package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/repository"
)

const (
	retryDueKey     = "retry:due"   // ZSET member=paymentID score=unix(NextAttemptAt)
	retryTaskPrefix = "retry:task:" // JSON payload per payment
)

// RetryTaskStore persists scheduled payment recreations in Redis so pending
// retries survive process restarts. The due index is a sorted set scored by
// the next attempt time; payloads live in plain keys next to it.
type RetryTaskStore struct {
	cli RedisClient
}

var _ repository.RetryTaskStore = (*RetryTaskStore)(nil)

func NewRetryTaskStore(cli RedisClient) *RetryTaskStore {
	return &RetryTaskStore{cli: cli}
}

type taskRecord struct {
	ID            string            `json:"id"`
	PaymentID     string            `json:"payment_id"`
	UserID        string            `json:"user_id"`
	AmountValue   string            `json:"amount_value"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description"`
	ReturnURL     string            `json:"return_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Attempt       int               `json:"attempt"`
	MaxAttempts   int               `json:"max_attempts"`
	NextAttemptAt time.Time         `json:"next_attempt_at"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (s *RetryTaskStore) Save(ctx context.Context, task *model.RetryTask) error {
	rec := taskRecord{
		ID:            task.ID,
		PaymentID:     task.PaymentID,
		UserID:        task.UserID,
		AmountValue:   task.Amount.Value,
		Currency:      task.Amount.Currency,
		Description:   task.Description,
		ReturnURL:     task.ReturnURL,
		Metadata:      task.Metadata,
		Attempt:       task.Attempt,
		MaxAttempts:   task.MaxAttempts,
		NextAttemptAt: task.NextAttemptAt,
		CreatedAt:     task.CreatedAt,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("retry store marshal: %w", err)
	}
	if err := s.cli.Set(ctx, retryTaskPrefix+task.PaymentID, string(raw), 0); err != nil {
		return fmt.Errorf("retry store set: %w", err)
	}
	if err := s.cli.ZAdd(ctx, retryDueKey, float64(task.NextAttemptAt.Unix()), task.PaymentID); err != nil {
		return fmt.Errorf("retry store index: %w", err)
	}
	return nil
}

func (s *RetryTaskStore) FindByPaymentID(ctx context.Context, paymentID string) (*model.RetryTask, error) {
	raw, err := s.cli.Get(ctx, retryTaskPrefix+paymentID)
	if err != nil {
		if errors.Is(err, Nil) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("retry store get: %w", err)
	}
	return decodeTask(raw)
}

func (s *RetryTaskStore) ListDue(ctx context.Context, now time.Time, limit int64) ([]*model.RetryTask, error) {
	return s.list(ctx, strconv.FormatInt(now.Unix(), 10), limit)
}

func (s *RetryTaskStore) List(ctx context.Context) ([]*model.RetryTask, error) {
	return s.list(ctx, "+inf", 0)
}

func (s *RetryTaskStore) list(ctx context.Context, max string, limit int64) ([]*model.RetryTask, error) {
	ids, err := s.cli.ZRangeByScore(ctx, retryDueKey, "-inf", max, limit)
	if err != nil {
		return nil, fmt.Errorf("retry store scan: %w", err)
	}
	tasks := make([]*model.RetryTask, 0, len(ids))
	for _, id := range ids {
		raw, err := s.cli.Get(ctx, retryTaskPrefix+id)
		if err != nil {
			if errors.Is(err, Nil) {
				// payload gone but index entry left behind; clean up
				_ = s.cli.ZRem(ctx, retryDueKey, id)
				continue
			}
			return nil, fmt.Errorf("retry store get %s: %w", id, err)
		}
		task, err := decodeTask(raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *RetryTaskStore) Delete(ctx context.Context, paymentID string) error {
	if _, err := s.cli.Get(ctx, retryTaskPrefix+paymentID); err != nil {
		if errors.Is(err, Nil) {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("retry store get: %w", err)
	}
	if err := s.cli.Del(ctx, retryTaskPrefix+paymentID); err != nil {
		return fmt.Errorf("retry store del: %w", err)
	}
	if err := s.cli.ZRem(ctx, retryDueKey, paymentID); err != nil {
		return fmt.Errorf("retry store unindex: %w", err)
	}
	return nil
}

func decodeTask(raw string) (*model.RetryTask, error) {
	var rec taskRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("retry store unmarshal: %w", err)
	}
	return &model.RetryTask{
		ID:            rec.ID,
		PaymentID:     rec.PaymentID,
		UserID:        rec.UserID,
		Amount:        model.Amount{Value: rec.AmountValue, Currency: rec.Currency},
		Description:   rec.Description,
		ReturnURL:     rec.ReturnURL,
		Metadata:      rec.Metadata,
		Attempt:       rec.Attempt,
		MaxAttempts:   rec.MaxAttempts,
		NextAttemptAt: rec.NextAttemptAt,
		CreatedAt:     rec.CreatedAt,
	}, nil
}
