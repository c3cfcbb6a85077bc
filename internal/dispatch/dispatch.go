// Package dispatch routes a push to the main or draft endpoint of the remote
// service based on branch context.
//
// A push from the repository's default branch goes to main; anything else,
// including a push from outside version control, goes to draft.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/Mschirtzinger/tcsync/internal/remote"
)

// Endpoint is the remote acceptance mode of a push.
type Endpoint int

const (
	// Draft submits a non-destructive proposal.
	Draft Endpoint = iota
	// Main replaces the authoritative set.
	Main
)

func (e Endpoint) String() string {
	if e == Main {
		return "main"
	}
	return "draft"
}

// RefSource supplies branch context. vcs.VCS satisfies it.
type RefSource interface {
	CurrentRef() (string, error)
	DefaultRef() (string, error)
}

// Pusher performs the network call. remote.Client satisfies it.
type Pusher interface {
	PushMain(ctx context.Context, p remote.Payload) error
	PushDraft(ctx context.Context, p remote.Payload) error
}

// ErrorHandler receives push failures. It decides whether the caller fails
// fast or carries on.
type ErrorHandler func(endpoint Endpoint, err error)

// Dispatcher routes payloads.
type Dispatcher struct {
	refs    RefSource
	pusher  Pusher
	onError ErrorHandler
	logger  *slog.Logger
}

// New creates a Dispatcher. refs may be nil, which always routes to draft.
// A nil onError logs failures at error level.
func New(refs RefSource, pusher Pusher, onError ErrorHandler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{refs: refs, pusher: pusher, onError: onError, logger: logger}
	if d.onError == nil {
		d.onError = func(endpoint Endpoint, err error) {
			logger.Error("push failed", "endpoint", endpoint.String(), "error", err)
		}
	}
	return d
}

// Route returns the endpoint a push would use. Missing or unreadable refs
// route to draft.
func (d *Dispatcher) Route() Endpoint {
	if d.refs == nil {
		return Draft
	}

	current, err := d.refs.CurrentRef()
	if err != nil || current == "" {
		d.logger.Debug("no current ref, routing to draft", "error", err)
		return Draft
	}
	def, err := d.refs.DefaultRef()
	if err != nil || def == "" {
		d.logger.Debug("no default ref, routing to draft", "current", current, "error", err)
		return Draft
	}

	if current == def {
		return Main
	}
	return Draft
}

// Dispatch pushes p to the routed endpoint with exactly one call to the
// Pusher. Failures go to the error handler; the chosen endpoint is returned
// either way.
func (d *Dispatcher) Dispatch(ctx context.Context, p remote.Payload) Endpoint {
	endpoint := d.Route()

	var err error
	switch endpoint {
	case Main:
		err = d.pusher.PushMain(ctx, p)
	default:
		err = d.pusher.PushDraft(ctx, p)
	}
	if err != nil {
		d.onError(endpoint, err)
		return endpoint
	}

	d.logger.Info("pushed test cases",
		"endpoint", endpoint.String(),
		"target", p.TargetID,
		"count", len(p.TestCases))
	return endpoint
}
