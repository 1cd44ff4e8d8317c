// Package innings tracks one team's batting turn: running totals, over
// composition, the batting pair, and the awaiting-replacement sub-state.
// Mutations happen only through the Apply* fold helpers so replay and
// incremental updates stay equivalent.
package innings

import (
	"fmt"

	"github.com/creaselive/crease/internal/scoring/domain/delivery"
	"github.com/creaselive/crease/internal/scoring/domain/match"
	"github.com/creaselive/crease/internal/scoring/domain/rotation"
	"github.com/creaselive/crease/internal/scoring/domain/stats"
)

// Reason classifies why an innings completed.
type Reason string

const (
	// ReasonAllOut means the wicket ceiling was reached.
	ReasonAllOut Reason = "all_out"
	// ReasonOversExhausted means the legal-ball quota was used up.
	ReasonOversExhausted Reason = "overs_exhausted"
	// ReasonTargetReached means the chasing side passed its target.
	ReasonTargetReached Reason = "target_reached"
	// ReasonDeclared means an administrative end-innings action.
	ReasonDeclared Reason = "declared"
)

// Extras tallies team runs not credited to any striker, by category.
type Extras struct {
	Wides     int `json:"wides"`
	NoBalls   int `json:"no_balls"`
	Byes      int `json:"byes"`
	LegByes   int `json:"leg_byes"`
	Penalties int `json:"penalties"`
}

// Total sums all extras categories.
func (e Extras) Total() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes + e.Penalties
}

// State is the per-innings aggregate slice.
type State struct {
	Number        int    `json:"number"`
	BattingTeamID string `json:"batting_team_id"`
	BowlingTeamID string `json:"bowling_team_id"`
	// Target is the chasing requirement set at creation, 0 for the first innings.
	Target int `json:"target,omitempty"`

	Runs       int    `json:"runs"`
	Wickets    int    `json:"wickets"`
	LegalBalls int    `json:"legal_balls"`
	Extras     Extras `json:"extras"`
	// PenaltyToFielding accumulates penalty runs awarded to the fielding side.
	PenaltyToFielding int `json:"penalty_to_fielding,omitempty"`
	// DeliberateShorts counts deliberate short-run offenses, for the
	// repeat-offense penalty policy.
	DeliberateShorts int `json:"deliberate_shorts,omitempty"`

	// OverNumber is 1-based once the innings starts. BallInOver numbers every
	// delivery including illegal ones; LegalInOver counts only deliveries
	// toward the over's quota.
	OverNumber  int `json:"over_number"`
	BallInOver  int `json:"ball_in_over"`
	LegalInOver int `json:"legal_in_over"`

	// CurrentBowlerID is empty while the innings awaits the next over's bowler.
	CurrentBowlerID string               `json:"current_bowler_id"`
	Eligibility     rotation.Eligibility `json:"eligibility"`

	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`

	AwaitingReplacement bool         `json:"awaiting_replacement"`
	VacatedEnd          rotation.End `json:"vacated_end,omitempty"`

	Started          bool   `json:"started"`
	Completed        bool   `json:"completed"`
	CompletionReason Reason `json:"completion_reason,omitempty"`

	Batting      map[string]stats.Batting `json:"batting"`
	BattingOrder []string                 `json:"batting_order"`
	Bowling      map[string]stats.Bowling `json:"bowling"`
	BowlingOrder []string                 `json:"bowling_order"`
	Partnership  stats.Partnership        `json:"partnership"`
}

// New creates an innings shell awaiting its openers.
func New(number int, battingTeamID, bowlingTeamID string, target int) State {
	return State{
		Number:        number,
		BattingTeamID: battingTeamID,
		BowlingTeamID: bowlingTeamID,
		Target:        target,
		Batting:       map[string]stats.Batting{},
		Bowling:       map[string]stats.Bowling{},
	}
}

// InProgress reports whether deliveries may still be recorded.
func (s State) InProgress() bool {
	return s.Started && !s.Completed
}

// OverComplete reports whether the current over has its full quota and the
// next over's bowler has not been nominated yet.
func (s State) OverComplete() bool {
	return s.Started && s.CurrentBowlerID == ""
}

// AllOut reports whether the wicket ceiling has been reached.
func (s State) AllOut(f match.Format) bool {
	return s.Wickets >= f.MaxWickets()
}

// OversExhausted reports whether the legal-ball quota is used up.
func (s State) OversExhausted(f match.Format) bool {
	quota := f.LegalBallQuota()
	return quota > 0 && s.LegalBalls >= quota
}

// TargetReached reports whether the chasing side has passed the target.
func (s State) TargetReached(target int) bool {
	return target > 0 && s.Runs >= target
}

// HasBatted reports whether the player already appeared in this innings.
func (s State) HasBatted(playerID string) bool {
	_, ok := s.Batting[playerID]
	return ok
}

// OversDisplay formats progress as the conventional "O.B" notation.
func (s State) OversDisplay(ballsPerOver int) string {
	if ballsPerOver <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%d.%d", s.LegalBalls/ballsPerOver, s.LegalBalls%ballsPerOver)
}

// Start opens the innings with its openers and opening bowler.
func (s *State) Start(strikerID, nonStrikerID, bowlerID string) {
	s.Started = true
	s.OverNumber = 1
	s.StrikerID = strikerID
	s.NonStrikerID = nonStrikerID
	s.enrollBatter(strikerID)
	s.enrollBatter(nonStrikerID)
	s.enrollBowler(bowlerID)
	s.CurrentBowlerID = bowlerID
	s.Partnership.Reset(strikerID, nonStrikerID)
}

// ApplyDelivery folds one annotated delivery into the innings. The caller
// guarantees the delivery already passed rule validation against this state.
func (s *State) ApplyDelivery(ann delivery.Annotated, f match.Format) {
	s.BallInOver++
	if ann.DeadBall {
		// Dead balls consume numbering only; runs and dismissals are void.
		return
	}

	if ann.Legal {
		s.LegalBalls++
		s.LegalInOver++
	}
	s.Runs += ann.TeamRuns
	s.PenaltyToFielding += ann.PenaltyToFielding
	if ann.DeliberateShort {
		s.DeliberateShorts++
	}
	s.tallyExtras(ann)

	bat := s.Batting[s.StrikerID]
	bat.AddDelivery(ann)
	s.Batting[s.StrikerID] = bat

	bwl := s.Bowling[s.CurrentBowlerID]
	bwl.AddDelivery(ann)
	s.Partnership.Add(ann)

	// The striker is resolved before rotation so a dismissal without an
	// explicit player id always names the batter who faced the ball.
	strikerAtDelivery := s.StrikerID
	overCompleted := ann.Legal && s.LegalInOver >= f.BallsPerOver
	if ann.Legal {
		s.StrikerID, s.NonStrikerID = rotation.NextEnds(s.StrikerID, s.NonStrikerID, ann.StrikerRuns, overCompleted)
	}

	if ann.HasDismissal() {
		s.applyDismissal(ann, strikerAtDelivery)
	}

	if overCompleted {
		bwl.FinishOver()
		s.Eligibility.HandOver(s.CurrentBowlerID)
	}
	s.Bowling[s.CurrentBowlerID] = bwl
	if overCompleted {
		s.CurrentBowlerID = ""
	}
}

// ApplyBowlerChange opens the next over under the nominated bowler.
func (s *State) ApplyBowlerChange(bowlerID string) {
	s.OverNumber++
	s.BallInOver = 0
	s.LegalInOver = 0
	s.enrollBowler(bowlerID)
	s.CurrentBowlerID = bowlerID
}

// ApplyReplacement fills the vacated end with the incoming batter and starts
// a fresh partnership.
func (s *State) ApplyReplacement(playerID string) {
	switch s.VacatedEnd {
	case rotation.EndNonStriker:
		s.NonStrikerID = playerID
	default:
		s.StrikerID = playerID
	}
	s.enrollBatter(playerID)
	s.AwaitingReplacement = false
	s.VacatedEnd = ""
	s.Partnership.Reset(s.StrikerID, s.NonStrikerID)
}

// ApplySwitchStrike swaps the batting pair (manual override).
func (s *State) ApplySwitchStrike() {
	s.StrikerID, s.NonStrikerID = s.NonStrikerID, s.StrikerID
}

// Complete marks the innings finished for the given reason.
func (s *State) Complete(reason Reason) {
	s.Completed = true
	s.CompletionReason = reason
}

func (s *State) tallyExtras(ann delivery.Annotated) {
	switch ann.Extra {
	case delivery.ExtraWide:
		s.Extras.Wides += ann.TeamRuns
	case delivery.ExtraNoBall:
		s.Extras.NoBalls += ann.TeamRuns - ann.StrikerRuns
	case delivery.ExtraBye:
		s.Extras.Byes += ann.TeamRuns
	case delivery.ExtraLegBye:
		s.Extras.LegByes += ann.TeamRuns
	case delivery.ExtraPenalty:
		s.Extras.Penalties += ann.TeamRuns
	}
}

func (s *State) applyDismissal(ann delivery.Annotated, strikerAtDelivery string) {
	dismissedID := ann.DismissedID
	if dismissedID == "" {
		dismissedID = strikerAtDelivery
	}
	s.Wickets++

	bat := s.Batting[dismissedID]
	if bat.PlayerID == "" {
		bat.PlayerID = dismissedID
	}
	bat.RecordDismissal(ann.Dismissal, s.CurrentBowlerID, ann.FielderID)
	s.Batting[dismissedID] = bat

	switch dismissedID {
	case s.StrikerID:
		s.StrikerID = ""
		s.VacatedEnd = rotation.EndStriker
	case s.NonStrikerID:
		s.NonStrikerID = ""
		s.VacatedEnd = rotation.EndNonStriker
	default:
		// Unknown dismissed player was filtered by the validator; default to
		// the striker's end to keep the fold total.
		s.StrikerID = ""
		s.VacatedEnd = rotation.EndStriker
	}
	s.AwaitingReplacement = true
}

func (s *State) enrollBatter(playerID string) {
	if playerID == "" {
		return
	}
	if _, ok := s.Batting[playerID]; !ok {
		s.Batting[playerID] = stats.Batting{PlayerID: playerID}
		s.BattingOrder = append(s.BattingOrder, playerID)
	}
}

func (s *State) enrollBowler(playerID string) {
	if playerID == "" {
		return
	}
	if _, ok := s.Bowling[playerID]; !ok {
		s.Bowling[playerID] = stats.Bowling{PlayerID: playerID}
		s.BowlingOrder = append(s.BowlingOrder, playerID)
	}
}

// Clone deep-copies the innings state.
func (s State) Clone() State {
	cloned := s
	cloned.Batting = make(map[string]stats.Batting, len(s.Batting))
	for k, v := range s.Batting {
		cloned.Batting[k] = v
	}
	cloned.Bowling = make(map[string]stats.Bowling, len(s.Bowling))
	for k, v := range s.Bowling {
		cloned.Bowling[k] = v
	}
	cloned.BattingOrder = append([]string(nil), s.BattingOrder...)
	cloned.BowlingOrder = append([]string(nil), s.BowlingOrder...)
	return cloned
}
