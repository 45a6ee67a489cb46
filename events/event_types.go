package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a semantic event on the dispatcher.
type EventType string

const (
	// Session notices consumed by the notification surface.
	SessionWarning   EventType = "session.warning"
	SessionCritical  EventType = "session.critical"
	SessionExpired   EventType = "session.expired"
	SessionRefreshed EventType = "session.refreshed"
	SessionDismissed EventType = "session.dismissed"

	// SessionRefreshFailed lets the UI surface a failed extend-session
	// attempt distinctly from a silent no-op.
	SessionRefreshFailed EventType = "session.refresh_failed"

	// SessionTokenWritten is published by the embedding application after
	// a fresh login so the monitor re-evaluates immediately.
	SessionTokenWritten EventType = "session.token_written"

	// FormSubmitted is published after a successful form submission; the
	// keeper clears the matching draft so stale data cannot resurrect.
	FormSubmitted EventType = "form.submitted"
)

// Event is a single published occurrence.
type Event struct {
	ID         string
	Type       EventType
	OccurredAt time.Time
	Payload    any
}

// Notice is the payload carried by session state notifications.
type Notice struct {
	State            string `json:"state"`
	SecondsRemaining int64  `json:"seconds_remaining"`
}

// FormPayload identifies the form a FormSubmitted event refers to.
type FormPayload struct {
	Key string `json:"key"`
}

// New builds an event with a fresh ID and timestamp.
func New(eventType EventType, payload any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}
