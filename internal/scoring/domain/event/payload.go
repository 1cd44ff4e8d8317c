package event

import (
	"encoding/json"
	"fmt"

	"github.com/creaselive/crease/internal/scoring/domain/delivery"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// MatchCreatedPayload captures the payload for match.created events.
type MatchCreatedPayload struct {
	TeamA  match.Team   `json:"team_a"`
	TeamB  match.Team   `json:"team_b"`
	Format match.Format `json:"format"`
}

// TossRecordedPayload captures the payload for match.toss_recorded events.
type TossRecordedPayload struct {
	WinnerTeamID string             `json:"winner_team_id"`
	Decision     match.TossDecision `json:"decision"`
}

// MatchEndedPayload captures the payload for match.ended events.
type MatchEndedPayload struct {
	Result match.Result `json:"result"`
}

// InningsStartedPayload captures the payload for innings.started events.
type InningsStartedPayload struct {
	Number          int    `json:"number"`
	StrikerID       string `json:"striker_id"`
	NonStrikerID    string `json:"non_striker_id"`
	OpeningBowlerID string `json:"opening_bowler_id"`
}

// InningsEndedPayload captures the payload for innings.ended events.
type InningsEndedPayload struct {
	Number  int            `json:"number"`
	Reason  innings.Reason `json:"reason"`
	Runs    int            `json:"runs"`
	Wickets int            `json:"wickets"`
}

// DeliveryRecordedPayload captures the payload for delivery.recorded events.
// It stores the full annotated outcome plus the addressing the statistics
// fold needs, so the ball ledger alone reconstructs every aggregate.
type DeliveryRecordedPayload struct {
	OverNumber   int                `json:"over_number"`
	BallInOver   int                `json:"ball_in_over"`
	StrikerID    string             `json:"striker_id"`
	NonStrikerID string             `json:"non_striker_id"`
	BowlerID     string             `json:"bowler_id"`
	Ball         delivery.Annotated `json:"ball"`
}

// BowlerChangedPayload captures the payload for over.bowler_changed events.
type BowlerChangedPayload struct {
	OverNumber int    `json:"over_number"`
	BowlerID   string `json:"bowler_id"`
}

// BatterReplacedPayload captures the payload for batter.replaced events.
type BatterReplacedPayload struct {
	IncomingID string `json:"incoming_id"`
	OutgoingID string `json:"outgoing_id,omitempty"`
	End        string `json:"end"`
}

// StrikeSwitchedPayload captures the payload for strike.switched events.
type StrikeSwitchedPayload struct {
	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`
}

// EncodePayload marshals an event payload struct to JSON.
func EncodePayload(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode event payload: %w", err)
	}
	return data, nil
}

// DecodePayload unmarshals an event's payload into the target struct.
func DecodePayload(evt Event, target any) error {
	if len(evt.PayloadJSON) == 0 {
		return fmt.Errorf("event %s has no payload", evt.Type)
	}
	if err := json.Unmarshal(evt.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}
	return nil
}

// ValidateForAppend checks the envelope before storage assigns a sequence.
func ValidateForAppend(evt Event) (Event, error) {
	if evt.MatchID == "" {
		return Event{}, fmt.Errorf("event match id is required")
	}
	if !evt.Type.IsValid() {
		return Event{}, fmt.Errorf("event type is required")
	}
	known := false
	for _, t := range KnownTypes() {
		if evt.Type == t {
			known = true
			break
		}
	}
	if !known {
		return Event{}, fmt.Errorf("unknown event type %q", evt.Type)
	}
	if len(evt.PayloadJSON) == 0 {
		return Event{}, fmt.Errorf("event payload is required")
	}
	return evt, nil
}
