package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the inbox and persists them. Persistence
// failures are logged, not fatal: the audit trail is best-effort, the ledger
// is not.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				if w.logger != nil {
					w.logger.ErrorContext(ctx, "audit append failed",
						"error", err,
						"action", event.Action,
					)
				}
			}
		}
	}
}

// drain flushes events already buffered at shutdown so a burst right before
// SIGTERM is not lost.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			if err := w.store.Append(context.Background(), event); err != nil {
				if w.logger != nil {
					w.logger.Error("audit append failed during drain",
						"error", err,
						"action", event.Action,
					)
				}
			}
		default:
			return
		}
	}
}
