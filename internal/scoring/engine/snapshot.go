package engine

import (
	"context"
	"fmt"

	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// Scorecard is the read model for score displays. Everything in it derives
// from the aggregate snapshot; it carries no authority of its own.
type Scorecard struct {
	MatchID        string        `json:"match_id"`
	Status         match.Status  `json:"status"`
	TeamA          match.Team    `json:"team_a"`
	TeamB          match.Team    `json:"team_b"`
	Format         match.Format  `json:"format"`
	Toss           match.Toss    `json:"toss"`
	CurrentInnings int           `json:"current_innings"`
	Result         *match.Result `json:"result,omitempty"`
	Innings        []InningsCard `json:"innings"`
}

// InningsCard summarizes one innings for display.
type InningsCard struct {
	Number          int            `json:"number"`
	BattingTeamID   string         `json:"batting_team_id"`
	BattingTeamName string         `json:"batting_team_name"`
	Score           string         `json:"score"`
	Runs            int            `json:"runs"`
	Wickets         int            `json:"wickets"`
	Overs           string         `json:"overs"`
	Extras          innings.Extras `json:"extras"`
	Target          int            `json:"target,omitempty"`
	RunsRequired    int            `json:"runs_required,omitempty"`
	// CurrentOver describes the over in progress; nil once the innings ends.
	CurrentOver *OverCard   `json:"current_over,omitempty"`
	Batters     []BatterRow `json:"batters"`
	Bowlers     []BowlerRow `json:"bowlers"`
	Partnership struct {
		Runs  int `json:"runs"`
		Balls int `json:"balls"`
	} `json:"partnership"`
	Completed           bool           `json:"completed"`
	CompletionReason    innings.Reason `json:"completion_reason,omitempty"`
	AwaitingReplacement bool           `json:"awaiting_replacement,omitempty"`
}

// OverCard describes the over in progress.
type OverCard struct {
	Number     int    `json:"number"`
	LegalBalls int    `json:"legal_balls"`
	BowlerID   string `json:"bowler_id,omitempty"`
	// AwaitingBowler is set between overs, before the next nomination.
	AwaitingBowler bool   `json:"awaiting_bowler,omitempty"`
	StrikerID      string `json:"striker_id"`
	NonStrikerID   string `json:"non_striker_id"`
}

// BatterRow is one row of the batting card, in batting order.
type BatterRow struct {
	PlayerID   string  `json:"player_id"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	Out        bool    `json:"out"`
	Dismissal  string  `json:"dismissal,omitempty"`
	OnStrike   bool    `json:"on_strike,omitempty"`
	AtCrease   bool    `json:"at_crease,omitempty"`
}

// BowlerRow is one row of the bowling card, in bowling order.
type BowlerRow struct {
	PlayerID     string  `json:"player_id"`
	Overs        string  `json:"overs"`
	Maidens      int     `json:"maidens"`
	RunsConceded int     `json:"runs_conceded"`
	Wickets      int     `json:"wickets"`
	Economy      float64 `json:"economy"`
	Bowling      bool    `json:"bowling,omitempty"`
}

// Scorecard builds the display read model for a match.
func (e *Engine) Scorecard(ctx context.Context, matchID string) (Scorecard, error) {
	state, err := e.State(ctx, matchID)
	if err != nil {
		return Scorecard{}, err
	}
	return buildScorecard(state), nil
}

// ScorecardFromState builds the read model from a state the caller already
// holds, e.g. a command result or a broadcast notification.
func ScorecardFromState(state *aggregate.State) Scorecard {
	if state == nil {
		return Scorecard{}
	}
	return buildScorecard(state)
}

func buildScorecard(state *aggregate.State) Scorecard {
	card := Scorecard{
		MatchID:        state.Match.ID,
		Status:         state.Match.Status,
		TeamA:          state.Match.TeamA,
		TeamB:          state.Match.TeamB,
		Format:         state.Match.Format,
		Toss:           state.Match.Toss,
		CurrentInnings: state.Match.CurrentInnings,
	}
	if state.Match.Status == match.StatusCompleted {
		result := state.Match.Result
		card.Result = &result
	}
	for i := range state.Innings {
		card.Innings = append(card.Innings, buildInningsCard(state, &state.Innings[i]))
	}
	return card
}

func buildInningsCard(state *aggregate.State, inn *innings.State) InningsCard {
	card := InningsCard{
		Number:              inn.Number,
		BattingTeamID:       inn.BattingTeamID,
		BattingTeamName:     state.Match.TeamName(inn.BattingTeamID),
		Score:               scoreDisplay(inn),
		Runs:                inn.Runs,
		Wickets:             inn.Wickets,
		Overs:               inn.OversDisplay(state.Match.Format.BallsPerOver),
		Extras:              inn.Extras,
		Completed:           inn.Completed,
		CompletionReason:    inn.CompletionReason,
		AwaitingReplacement: inn.AwaitingReplacement,
	}
	card.Partnership.Runs = inn.Partnership.Runs
	card.Partnership.Balls = inn.Partnership.Balls

	if inn.Number == 2 {
		card.Target = state.ChaseTarget()
		if card.Target > 0 && !inn.Completed {
			if required := card.Target - inn.Runs; required > 0 {
				card.RunsRequired = required
			}
		}
	}

	if inn.InProgress() {
		card.CurrentOver = &OverCard{
			Number:         inn.OverNumber,
			LegalBalls:     inn.LegalInOver,
			BowlerID:       inn.CurrentBowlerID,
			AwaitingBowler: inn.OverComplete(),
			StrikerID:      inn.StrikerID,
			NonStrikerID:   inn.NonStrikerID,
		}
	}

	for _, playerID := range inn.BattingOrder {
		figures := inn.Batting[playerID]
		card.Batters = append(card.Batters, BatterRow{
			PlayerID:   playerID,
			Runs:       figures.Runs,
			Balls:      figures.Balls,
			Fours:      figures.Fours,
			Sixes:      figures.Sixes,
			StrikeRate: figures.StrikeRate(),
			Out:        figures.Out,
			Dismissal:  string(figures.Dismissal),
			OnStrike:   inn.InProgress() && playerID == inn.StrikerID,
			AtCrease:   inn.InProgress() && (playerID == inn.StrikerID || playerID == inn.NonStrikerID),
		})
	}
	for _, playerID := range inn.BowlingOrder {
		figures := inn.Bowling[playerID]
		card.Bowlers = append(card.Bowlers, BowlerRow{
			PlayerID:     playerID,
			Overs:        figures.Overs(state.Match.Format.BallsPerOver),
			Maidens:      figures.Maidens,
			RunsConceded: figures.RunsConceded,
			Wickets:      figures.Wickets,
			Economy:      figures.Economy(state.Match.Format.BallsPerOver),
			Bowling:      inn.InProgress() && playerID == inn.CurrentBowlerID,
		})
	}
	return card
}

// scoreDisplay formats the conventional "runs/wickets" notation.
func scoreDisplay(inn *innings.State) string {
	return fmt.Sprintf("%d/%d", inn.Runs, inn.Wickets)
}
