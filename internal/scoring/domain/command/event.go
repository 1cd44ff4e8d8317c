package command

import (
	"time"

	"github.com/creaselive/crease/internal/scoring/domain/event"
)

// NewEvent builds an event.Event by copying the shared envelope fields from a
// command. Callers supply the event-specific type, innings addressing, payload,
// and timestamp. This keeps per-decider boilerplate down and ensures new
// envelope fields are forwarded everywhere at once.
func NewEvent(cmd Command, eventType event.Type, inningsNumber int, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		MatchID:       cmd.MatchID,
		Type:          eventType,
		Timestamp:     now,
		InningsNumber: inningsNumber,
		RequestID:     cmd.RequestID,
		ActorID:       cmd.ActorID,
		PayloadJSON:   payloadJSON,
	}
}
