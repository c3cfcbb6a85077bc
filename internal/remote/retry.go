package remote

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// Retrying wraps a Client and repeats calls that fail with a retryable
// error. Non-retryable errors are returned after the first attempt.
type Retrying struct {
	Client Client

	// NewBackOff returns a fresh policy for each call; BackOff values are
	// stateful and must not be shared.
	NewBackOff func() backoff.BackOff

	Logger *slog.Logger
}

var _ Client = (*Retrying)(nil)

// NewRetrying retries each call up to retries times with exponential
// backoff. A non-positive retries returns c unchanged.
func NewRetrying(c Client, retries int, logger *slog.Logger) Client {
	if retries <= 0 {
		return c
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Retrying{
		Client: c,
		NewBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxElapsedTime = 2 * time.Minute
			return backoff.WithMaxRetries(bo, uint64(retries))
		},
		Logger: logger,
	}
}

// Pull implements Client.
func (r *Retrying) Pull(ctx context.Context, targetID string) (*Snapshot, error) {
	var snap *Snapshot
	err := r.retry(ctx, "pull", func() error {
		var err error
		snap, err = r.Client.Pull(ctx, targetID)
		return err
	})
	return snap, err
}

// PushMain implements Client.
func (r *Retrying) PushMain(ctx context.Context, p Payload) error {
	return r.retry(ctx, "push-main", func() error {
		return r.Client.PushMain(ctx, p)
	})
}

// PushDraft implements Client.
func (r *Retrying) PushDraft(ctx context.Context, p Payload) error {
	return r.retry(ctx, "push-draft", func() error {
		return r.Client.PushDraft(ctx, p)
	})
}

// FetchCase implements Client.
func (r *Retrying) FetchCase(ctx context.Context, targetID, caseID string) (*schema.TestCase, error) {
	var tc *schema.TestCase
	err := r.retry(ctx, "fetch-case", func() error {
		var err error
		tc, err = r.Client.FetchCase(ctx, targetID, caseID)
		return err
	})
	return tc, err
}

func (r *Retrying) retry(ctx context.Context, op string, fn func() error) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(r.NewBackOff(), ctx), func(err error, wait time.Duration) {
		logger.Warn("remote call failed, retrying", "op", op, "wait", wait, "error", err)
	})
}
