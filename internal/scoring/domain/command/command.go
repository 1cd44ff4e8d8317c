// Package command defines the scoring engine's command envelope and the
// decision type deciders return. A command describes intent; the rule
// validator turns it into ledger events or structured rejections.
package command

import (
	"fmt"

	"github.com/creaselive/crease/internal/scoring/domain/delivery"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// Type identifies the type of a scoring command.
type Type string

const (
	// TypeCreateMatch creates a match in setup state.
	TypeCreateMatch Type = "match.create"
	// TypeRecordToss records the toss outcome.
	TypeRecordToss Type = "match.record_toss"
	// TypeStartInnings opens the pending innings with openers and bowler.
	TypeStartInnings Type = "innings.start"
	// TypeSubmitDelivery submits one structured delivery outcome.
	TypeSubmitDelivery Type = "delivery.submit"
	// TypeChangeBowler nominates the next over's bowler.
	TypeChangeBowler Type = "over.change_bowler"
	// TypeSelectReplacement supplies the incoming batter after a wicket.
	TypeSelectReplacement Type = "batter.select_replacement"
	// TypeSwitchStrike manually swaps the batting pair.
	TypeSwitchStrike Type = "strike.switch"
	// TypeEndInnings administratively completes the current innings.
	TypeEndInnings Type = "innings.end"
	// TypeEndMatch administratively completes the match.
	TypeEndMatch Type = "match.end"
)

// IsValid reports whether the command type is known.
func (t Type) IsValid() bool {
	switch t {
	case TypeCreateMatch, TypeRecordToss, TypeStartInnings, TypeSubmitDelivery,
		TypeChangeBowler, TypeSelectReplacement, TypeSwitchStrike,
		TypeEndInnings, TypeEndMatch:
		return true
	}
	return false
}

// Command is the envelope every engine operation travels in.
type Command struct {
	// Type identifies the operation.
	Type Type
	// MatchID addresses the match aggregate.
	MatchID string
	// InningsNumber addresses the innings for innings-scoped operations.
	InningsNumber int
	// RequestID correlates the events this command emits; the engine fills
	// it when the caller does not supply one.
	RequestID string
	// ActorID identifies the scorer submitting the command, if known.
	ActorID string
	// Payload carries the command-specific payload struct.
	Payload any
}

// CreateMatchPayload carries the payload for match.create commands.
type CreateMatchPayload struct {
	TeamA  match.Team
	TeamB  match.Team
	Format match.Format
}

// RecordTossPayload carries the payload for match.record_toss commands.
type RecordTossPayload struct {
	WinnerTeamID string
	Decision     match.TossDecision
}

// StartInningsPayload carries the payload for innings.start commands.
type StartInningsPayload struct {
	StrikerID       string
	NonStrikerID    string
	OpeningBowlerID string
}

// SubmitDeliveryPayload carries the payload for delivery.submit commands.
type SubmitDeliveryPayload struct {
	Outcome delivery.Outcome
}

// ChangeBowlerPayload carries the payload for over.change_bowler commands.
type ChangeBowlerPayload struct {
	BowlerID string
}

// SelectReplacementPayload carries the payload for batter.select_replacement commands.
type SelectReplacementPayload struct {
	PlayerID string
}

// ValidateForDecision normalizes and checks the envelope before a decider
// sees the command.
func ValidateForDecision(cmd Command) (Command, error) {
	if !cmd.Type.IsValid() {
		return Command{}, fmt.Errorf("unknown command type %q", cmd.Type)
	}
	if cmd.MatchID == "" {
		return Command{}, fmt.Errorf("command match id is required")
	}
	switch cmd.Type {
	case TypeStartInnings, TypeSubmitDelivery, TypeChangeBowler,
		TypeSelectReplacement, TypeSwitchStrike, TypeEndInnings:
		if cmd.InningsNumber <= 0 {
			return Command{}, fmt.Errorf("command innings number is required")
		}
	}
	return cmd, nil
}
