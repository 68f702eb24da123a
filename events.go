package account

import (
	"context"
	"time"
)

// EventType enumerates the domain events this package emits.
type EventType string

const (
	EventAccountSaved           EventType = "account.saved"
	EventAccountDeleted         EventType = "account.deleted"
	EventRegistered             EventType = "account.registered"
	EventLoginSuccess           EventType = "auth.login.success"
	EventLoginFailure           EventType = "auth.login.failure"
	EventLoginNonexistent       EventType = "auth.login.nonexistent"
	EventLogout                 EventType = "auth.logout"
	EventSocialLogin            EventType = "auth.social.login"
	EventEmailChangeRequested   EventType = "email.change.requested"
	EventEmailConfirmed         EventType = "email.confirmed"
	EventPasswordResetRequested EventType = "password.reset.requested"
	EventPasswordChanged        EventType = "password.changed"
)

// Event describes something that happened to an account. Account may be nil
// for events about unknown identities, e.g. login against a missing account.
type Event struct {
	Type       EventType
	Account    *Account
	Metadata   map[string]any
	OccurredAt time.Time
}

// EventSink receives domain events. Sinks run best-effort: errors are logged
// by the emitter and never block the security flow.
type EventSink interface {
	Emit(ctx context.Context, event Event) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, event Event) error

// Emit implements EventSink.
func (f EventSinkFunc) Emit(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopEventSink struct{}

func (noopEventSink) Emit(context.Context, Event) error {
	return nil
}

func normalizeEventSink(s EventSink) EventSink {
	if s == nil {
		return noopEventSink{}
	}
	return s
}
