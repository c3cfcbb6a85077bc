package watch

import (
	"context"
	"sort"
	"time"
)

// DefaultDebounce is the quiet period Run waits for when none is given.
const DefaultDebounce = 250 * time.Millisecond

// Run starts w and calls fn once per burst of changes, after debounce has
// passed with no further events. Each batch holds the last event per path,
// sorted by path. Run stops w and returns nil when ctx is done.
func Run(ctx context.Context, w *Watcher, debounce time.Duration, fn func(context.Context, []Event)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	w.logger.Info("watching for changes", "root", w.root, "debounce", debounce)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]Event)
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events():
			if !ok {
				return nil
			}
			w.logger.Debug("file event", "op", e.Op, "path", e.Path)
			pending[e.Path] = e
			timer.Reset(debounce)

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			fn(ctx, drain(pending))
		}
	}
}

func drain(pending map[string]Event) []Event {
	batch := make([]Event, 0, len(pending))
	for path, e := range pending {
		batch = append(batch, e)
		delete(pending, path)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	return batch
}
