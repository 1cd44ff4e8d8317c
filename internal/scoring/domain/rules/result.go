package rules

import (
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// computeResult derives the match result from the totals as they stand. Both
// the automatic completion path and the administrative end-match override run
// through this one function so the bookkeeping cannot diverge.
func computeResult(state *aggregate.State) match.Result {
	first := state.InningsByNumber(1)
	second := state.InningsByNumber(2)
	if first == nil || second == nil || !second.Started {
		return match.Result{Outcome: match.ResultNoResult}
	}

	defendTotal := state.TeamTotal(first.BattingTeamID)
	chaseTotal := state.TeamTotal(second.BattingTeamID)
	switch {
	case chaseTotal > defendTotal:
		return match.Result{
			Outcome:      match.ResultWonByWickets,
			WinnerTeamID: second.BattingTeamID,
			Margin:       state.Match.Format.MaxWickets() - second.Wickets,
		}
	case chaseTotal < defendTotal:
		return match.Result{
			Outcome:      match.ResultWonByRuns,
			WinnerTeamID: first.BattingTeamID,
			Margin:       defendTotal - chaseTotal,
		}
	default:
		return match.Result{Outcome: match.ResultTie}
	}
}
