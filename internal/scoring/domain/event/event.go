// Package event defines the immutable entries of the per-match ledger.
// Delivery events are the dominant entry type; lifecycle events ride the
// same journal so that undoing a delivery also reverses any completion it
// triggered.
package event

import (
	"strings"
	"time"
)

// Type identifies the type of a match ledger event.
type Type string

// Match lifecycle events.
const (
	// TypeMatchCreated records the creation of a match.
	TypeMatchCreated Type = "match.created"
	// TypeTossRecorded records the toss outcome.
	TypeTossRecorded Type = "match.toss_recorded"
	// TypeMatchEnded records match completion and its result.
	TypeMatchEnded Type = "match.ended"
)

// Innings lifecycle events.
const (
	// TypeInningsStarted records the openers and opening bowler.
	TypeInningsStarted Type = "innings.started"
	// TypeInningsEnded records innings completion and its reason.
	TypeInningsEnded Type = "innings.ended"
)

// Play events.
const (
	// TypeDeliveryRecorded records one accepted delivery outcome with its
	// derived annotations. This is the ball ledger's atomic fact.
	TypeDeliveryRecorded Type = "delivery.recorded"
	// TypeBowlerChanged records the next over's nominated bowler.
	TypeBowlerChanged Type = "over.bowler_changed"
	// TypeBatterReplaced records the incoming batter after a wicket.
	TypeBatterReplaced Type = "batter.replaced"
	// TypeStrikeSwitched records a manual strike override.
	TypeStrikeSwitched Type = "strike.switched"
)

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "delivery").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// KnownTypes returns the set of event types this engine appends and folds.
func KnownTypes() []Type {
	return []Type{
		TypeMatchCreated,
		TypeTossRecorded,
		TypeMatchEnded,
		TypeInningsStarted,
		TypeInningsEnded,
		TypeDeliveryRecorded,
		TypeBowlerChanged,
		TypeBatterReplaced,
		TypeStrikeSwitched,
	}
}

// Event represents an immutable entry in the per-match ledger.
type Event struct {
	// MatchID is the match this event belongs to.
	MatchID string
	// Seq is the event sequence number within the match (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// InningsNumber addresses the innings affected (0 for match-level events).
	InningsNumber int
	// RequestID correlates the events emitted by one command, so undo can
	// remove a delivery together with the completions it triggered.
	RequestID string
	// ActorID identifies the scorer who triggered the event, if known.
	ActorID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}
