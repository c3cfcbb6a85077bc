package engine

import (
	"context"

	"github.com/Mschirtzinger/tcsync/internal/dispatch"
)

// PushResult is the outcome of Push.
type PushResult struct {
	Endpoint dispatch.Endpoint
	Cases    int

	// Skipped counts files that failed to parse and were left out.
	Skipped int

	// RemoteFailed is set when the push call failed. The error went to
	// OnRemoteError.
	RemoteFailed bool
}

// Push validates every case under sourceDir, or the root when empty, and
// sends them to the routed endpoint in one call.
func (s *Session) Push(ctx context.Context, sourceDir, targetID string) (*PushResult, error) {
	if err := s.requireRemote(); err != nil {
		return nil, err
	}
	if sourceDir == "" {
		sourceDir = s.Root
	}

	res, err := s.scan(sourceDir)
	if err != nil {
		return nil, err
	}
	cases := res.Cases()
	if err := checkCases(cases); err != nil {
		return nil, err
	}
	if err := canceled(ctx); err != nil {
		return nil, err
	}

	out := &PushResult{Cases: len(cases), Skipped: len(res.Skipped)}
	out.Endpoint = s.dispatcher(&out.RemoteFailed).Dispatch(ctx, s.payload(targetID, cases))
	return out, nil
}
