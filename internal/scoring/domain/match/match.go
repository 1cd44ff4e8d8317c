// Package match defines match identity, format parameters, and the match
// lifecycle state machine.
package match

import "strings"

// Status tracks the match lifecycle.
type Status string

const (
	// StatusSetup marks a match created but with no toss recorded.
	StatusSetup Status = "setup"
	// StatusTossDone marks a match whose toss outcome is recorded.
	StatusTossDone Status = "toss_done"
	// StatusInProgress marks a match with a started innings.
	StatusInProgress Status = "in_progress"
	// StatusCompleted marks a finished match; no further deliveries are accepted.
	StatusCompleted Status = "completed"
)

// IsValid reports whether the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusSetup, StatusTossDone, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether the status may move to the target status.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusSetup:
		return target == StatusTossDone
	case StatusTossDone:
		return target == StatusInProgress || target == StatusCompleted
	case StatusInProgress:
		return target == StatusCompleted
	}
	return false
}

// TossDecision is what the toss winner elected to do.
type TossDecision string

const (
	// TossDecisionBat means the toss winner bats first.
	TossDecisionBat TossDecision = "bat"
	// TossDecisionBowl means the toss winner bowls first.
	TossDecisionBowl TossDecision = "bowl"
)

// IsValid reports whether the decision is known.
func (d TossDecision) IsValid() bool {
	return d == TossDecisionBat || d == TossDecisionBowl
}

// Team identifies one participating side.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Format holds the format parameters the rule validator depends on.
type Format struct {
	// BallsPerOver is the legal-delivery quota per over, conventionally 6.
	BallsPerOver int `json:"balls_per_over"`
	// OversPerInnings caps legal overs per innings; 0 means unlimited.
	OversPerInnings int `json:"overs_per_innings"`
	// PlayersPerSide bounds the wicket count at PlayersPerSide-1.
	PlayersPerSide int `json:"players_per_side"`
}

// DefaultFormat is a standard limited-overs format: 6-ball overs, 20 overs,
// 11 a side.
var DefaultFormat = Format{BallsPerOver: 6, OversPerInnings: 20, PlayersPerSide: 11}

// Validate reports whether the format parameters are usable.
func (f Format) Validate() bool {
	return f.BallsPerOver > 0 && f.OversPerInnings >= 0 && f.PlayersPerSide > 1
}

// MaxWickets returns the per-innings wicket ceiling.
func (f Format) MaxWickets() int {
	return f.PlayersPerSide - 1
}

// LegalBallQuota returns the legal-delivery cap per innings, 0 for unlimited.
func (f Format) LegalBallQuota() int {
	if f.OversPerInnings <= 0 {
		return 0
	}
	return f.OversPerInnings * f.BallsPerOver
}

// Toss records the toss outcome.
type Toss struct {
	WinnerTeamID string       `json:"winner_team_id"`
	Decision     TossDecision `json:"decision"`
}

// ResultOutcome classifies how a completed match was decided.
type ResultOutcome string

const (
	// ResultWonByRuns means the side batting first defended its total.
	ResultWonByRuns ResultOutcome = "won_by_runs"
	// ResultWonByWickets means the chasing side reached its target.
	ResultWonByWickets ResultOutcome = "won_by_wickets"
	// ResultTie means both sides finished level.
	ResultTie ResultOutcome = "tie"
	// ResultNoResult means the match ended without a decision.
	ResultNoResult ResultOutcome = "no_result"
)

// Result records the final outcome of a completed match.
type Result struct {
	Outcome      ResultOutcome `json:"outcome"`
	WinnerTeamID string        `json:"winner_team_id,omitempty"`
	Margin       int           `json:"margin,omitempty"`
}

// State is the match-level aggregate slice.
type State struct {
	ID             string `json:"id"`
	TeamA          Team   `json:"team_a"`
	TeamB          Team   `json:"team_b"`
	Format         Format `json:"format"`
	Status         Status `json:"status"`
	Toss           Toss   `json:"toss"`
	CurrentInnings int    `json:"current_innings"`
	Result         Result `json:"result"`
}

// HasTeam reports whether the team id belongs to this match.
func (s State) HasTeam(teamID string) bool {
	teamID = strings.TrimSpace(teamID)
	return teamID != "" && (teamID == s.TeamA.ID || teamID == s.TeamB.ID)
}

// OpponentOf returns the other team's id, or empty for an unknown team.
func (s State) OpponentOf(teamID string) string {
	switch teamID {
	case s.TeamA.ID:
		return s.TeamB.ID
	case s.TeamB.ID:
		return s.TeamA.ID
	}
	return ""
}

// BattingFirst returns the id of the side batting the first innings, derived
// from the toss outcome.
func (s State) BattingFirst() string {
	if s.Toss.WinnerTeamID == "" {
		return ""
	}
	if s.Toss.Decision == TossDecisionBat {
		return s.Toss.WinnerTeamID
	}
	return s.OpponentOf(s.Toss.WinnerTeamID)
}

// TeamName resolves a team id to its display name.
func (s State) TeamName(teamID string) string {
	switch teamID {
	case s.TeamA.ID:
		return s.TeamA.Name
	case s.TeamB.ID:
		return s.TeamB.Name
	}
	return ""
}
