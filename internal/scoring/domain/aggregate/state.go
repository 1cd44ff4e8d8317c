// Package aggregate holds the match-scoped aggregate state and the fold that
// rebuilds it from the ball ledger. Statistics are never authoritative on
// their own: replaying the ledger from an empty state must always reproduce
// them exactly.
package aggregate

import (
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// State captures the full aggregate for one match.
type State struct {
	Match   match.State     `json:"match"`
	Innings []innings.State `json:"innings"`
	// PenaltyCredits accrues penalty runs awarded to a fielding side,
	// released into that team's innings total when it bats (or counted at
	// result time if it already batted).
	PenaltyCredits map[string]int `json:"penalty_credits,omitempty"`
}

// InningsByNumber returns the innings with the given 1-based number.
func (s *State) InningsByNumber(number int) *innings.State {
	for i := range s.Innings {
		if s.Innings[i].Number == number {
			return &s.Innings[i]
		}
	}
	return nil
}

// CurrentInnings returns the innings the match pointer addresses.
func (s *State) CurrentInnings() *innings.State {
	return s.InningsByNumber(s.Match.CurrentInnings)
}

// TeamTotal returns the team's runs across its innings plus any penalty
// credits not yet folded into an innings.
func (s *State) TeamTotal(teamID string) int {
	total := s.PenaltyCredits[teamID]
	for i := range s.Innings {
		if s.Innings[i].BattingTeamID == teamID {
			total += s.Innings[i].Runs
		}
	}
	return total
}

// ChaseTarget returns the runs the side batting second must reach to win,
// accounting for penalty credits still owed to the defending side. Returns 0
// before the second innings exists.
func (s *State) ChaseTarget() int {
	second := s.InningsByNumber(2)
	if second == nil {
		return 0
	}
	return s.TeamTotal(second.BowlingTeamID) + 1
}

// Clone deep-copies the aggregate state.
func (s State) Clone() State {
	cloned := s
	cloned.Innings = make([]innings.State, len(s.Innings))
	for i := range s.Innings {
		cloned.Innings[i] = s.Innings[i].Clone()
	}
	if s.PenaltyCredits != nil {
		cloned.PenaltyCredits = make(map[string]int, len(s.PenaltyCredits))
		for k, v := range s.PenaltyCredits {
			cloned.PenaltyCredits[k] = v
		}
	}
	return cloned
}
