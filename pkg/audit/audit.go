// Package audit captures security-relevant actions emitted from domain
// logic. Events stay transport-agnostic so sinks (structured log, Kafka)
// can fan out without the services knowing.
package audit

import (
	"context"
	"log/slog"
	"time"

	"userdir/pkg/requestcontext"
)

// Action names for events emitted by this service.
const (
	ActionLoginSucceeded  = "login_succeeded"
	ActionLoginFailed     = "login_failed"
	ActionLockoutSet      = "lockout_set"
	ActionLockoutRejected = "lockout_rejected"
	ActionLockoutCleared  = "lockout_cleared"
	ActionUserCreated     = "user_created"
	ActionUserUpdated     = "user_updated"
	ActionUserDeleted     = "user_deleted"
)

// Event is a single security audit record.
type Event struct {
	Action     string    `json:"action"`
	Identifier string    `json:"identifier,omitempty"` // login identifier (email)
	Origin     string    `json:"origin,omitempty"`     // caller network origin
	Device     string    `json:"device,omitempty"`     // human-readable device name
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits audit events to an external sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Log writes an audit line through the structured logger and, when a
// publisher is configured, emits the event to it. Publisher failures are
// logged and swallowed; auditing must never fail the request.
func Log(ctx context.Context, logger *slog.Logger, publisher Publisher, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if logger != nil {
		logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"identifier", event.Identifier,
			"origin", event.Origin,
			"device", event.Device,
			"request_id", event.RequestID,
		)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
