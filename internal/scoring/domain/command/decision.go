package command

import "github.com/creaselive/crease/internal/scoring/domain/event"

// Decision represents the pure outcome of handling a command.
type Decision struct {
	Events     []event.Event
	Rejections []Rejection
}

// Rejection captures a domain-level reason a command was declined. Metadata
// carries enough state context (current over, ball count, bowler) for the
// caller to decide corrective action without re-querying.
type Rejection struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Accepted reports whether the decision carries no rejections.
func (d Decision) Accepted() bool {
	return len(d.Rejections) == 0
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}
