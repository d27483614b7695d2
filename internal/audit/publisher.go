package audit

import (
	"context"
	"log/slog"
	"time"

	"finbank/pkg/requestcontext"
)

// Recorder is what services hold; the concrete sink is wired in main.
type Recorder interface {
	Emit(ctx context.Context, event Event) error
}

// Emit is a nil-safe helper so services don't guard every audit call.
func Emit(ctx context.Context, r Recorder, event Event) {
	if r == nil {
		return
	}
	_ = r.Emit(ctx, event)
}

// Publisher hands events to a buffered inbox consumed by the Worker. A full
// inbox drops the event with a warning instead of blocking a money mutation
// on the audit path.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, event dropped",
				"action", event.Action,
				"resource", event.Resource,
			)
		}
		return nil
	}
}

// DirectRecorder appends straight to the store. Used by tests and by callers
// that want synchronous audit persistence.
type DirectRecorder struct {
	store Store
}

func NewDirectRecorder(store Store) *DirectRecorder {
	return &DirectRecorder{store: store}
}

func (r *DirectRecorder) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return r.store.Append(ctx, event)
}
