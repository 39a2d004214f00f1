// Package audit captures structured audit events for security and business
// relevant operations. Emission is best effort: callers never fail an
// operation because an audit sink is down.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Publisher emits audit events for security-relevant operations.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(action string, metadata map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Action:     action,
		OccurredAt: time.Now(),
		Metadata:   metadata,
	}
}

// LogAudit logs the action and, when a publisher is configured, emits the
// matching audit event. Publisher failures are logged, never propagated.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, action string, kv ...any) {
	if logger != nil {
		logger.InfoContext(ctx, action, kv...)
	}
	if publisher == nil {
		return
	}

	metadata := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		metadata[key] = kv[i+1]
	}

	if err := publisher.Emit(ctx, NewEvent(action, metadata)); err != nil && logger != nil {
		logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err.Error())
	}
}
