// Package remote talks to the test case service.
//
// The engine only depends on the Client interface. HTTPClient is the
// production implementation; Retrying adds a caller-owned retry policy on
// top of any Client.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// ErrRemote marks every failure reported by or while reaching the service.
var ErrRemote = errors.New("remote error")

// Client is the remote test case service.
type Client interface {
	// Pull returns the authoritative snapshot for a target.
	Pull(ctx context.Context, targetID string) (*Snapshot, error)

	// PushMain replaces the target's cases with the payload.
	PushMain(ctx context.Context, p Payload) error

	// PushDraft submits the payload as a proposal without changing the
	// target's cases.
	PushDraft(ctx context.Context, p Payload) error

	// FetchCase returns the current remote version of a single case.
	FetchCase(ctx context.Context, targetID, caseID string) (*schema.TestCase, error)
}

// Snapshot is the full set of cases the service holds for a target.
type Snapshot struct {
	TargetID  string             `json:"targetId"`
	TestCases []*schema.TestCase `json:"testCases"`
}

// Payload is a validated set of cases pushed to a target, together with the
// version-control context it was pushed from. Empty fields are omitted.
type Payload struct {
	TargetID  string             `json:"targetId"`
	TestCases []*schema.TestCase `json:"testCases"`

	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
}

// Error is a failed remote call.
type Error struct {
	Op         string // pull, push-main, push-draft, fetch-case
	StatusCode int    // zero when no response was received
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("remote %s failed: %s (status %d)", e.Op, e.Body, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s failed: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("remote %s failed", e.Op)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemote}
	}
	return []error{ErrRemote, e.Err}
}

// IsRetryable reports whether a failed call may succeed when repeated:
// transport errors, 429 and 5xx responses. Undecodable responses are not.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var re *Error
	if !errors.As(err, &re) {
		return false
	}
	if re.StatusCode == 0 {
		var ue *url.Error
		return errors.As(re.Err, &ue)
	}
	return re.StatusCode == http.StatusTooManyRequests || re.StatusCode >= 500
}
