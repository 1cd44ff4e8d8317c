package rules

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

func (d *Decider) decideStartInnings(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	if state.Match.ID == "" {
		return rejectCode(apperrors.CodeNotFound, "match does not exist", nil)
	}
	if state.Match.Status == match.StatusCompleted {
		return rejectCode(apperrors.CodeMatchAlreadyComplete, "match is already complete", nil)
	}
	if state.Match.Status == match.StatusSetup {
		return rejectCode(apperrors.CodeTossNotRecorded, "toss must be recorded before an innings starts", nil)
	}
	inn := state.InningsByNumber(cmd.InningsNumber)
	if inn == nil {
		return rejectCode(apperrors.CodeNotFound,
			fmt.Sprintf("innings %d does not exist", cmd.InningsNumber), nil)
	}
	if cmd.InningsNumber != state.Match.CurrentInnings {
		return rejectCode(apperrors.CodeInningsNotCurrent,
			fmt.Sprintf("innings %d is not the current innings", cmd.InningsNumber),
			map[string]string{"current_innings": fmt.Sprintf("%d", state.Match.CurrentInnings)})
	}
	if inn.Started {
		return rejectCode(apperrors.CodeInningsAlreadyStarted,
			fmt.Sprintf("innings %d has already started", inn.Number), nil)
	}

	payload, ok := cmd.Payload.(command.StartInningsPayload)
	if !ok {
		return rejectInvalidPayload(cmd)
	}
	striker := strings.TrimSpace(payload.StrikerID)
	nonStriker := strings.TrimSpace(payload.NonStrikerID)
	bowler := strings.TrimSpace(payload.OpeningBowlerID)
	switch {
	case striker == "" || nonStriker == "":
		return rejectCode(apperrors.CodeInningsInvalidOpeners, "both openers are required", nil)
	case striker == nonStriker:
		return rejectCode(apperrors.CodeInningsInvalidOpeners, "openers must be distinct",
			map[string]string{"player_id": striker})
	case bowler == "":
		return rejectCode(apperrors.CodeInningsInvalidOpeners, "an opening bowler is required", nil)
	case bowler == striker || bowler == nonStriker:
		return rejectCode(apperrors.CodeInningsInvalidOpeners, "the opening bowler cannot be an opener",
			map[string]string{"player_id": bowler})
	}

	data, _ := event.EncodePayload(event.InningsStartedPayload{
		Number:          inn.Number,
		StrikerID:       striker,
		NonStrikerID:    nonStriker,
		OpeningBowlerID: bowler,
	})
	return command.Accept(command.NewEvent(cmd, event.TypeInningsStarted, inn.Number, data, now))
}

// decideEndInnings declares the addressed innings closed. Closing the second
// innings completes the match with the result as the totals stand.
func (d *Decider) decideEndInnings(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	inn, rejected := inningsGuard(state, cmd)
	if rejected != nil {
		return *rejected
	}

	clone := state.Clone()
	data, _ := event.EncodePayload(event.InningsEndedPayload{
		Number:  inn.Number,
		Reason:  innings.ReasonDeclared,
		Runs:    inn.Runs,
		Wickets: inn.Wickets,
	})
	ended := command.NewEvent(cmd, event.TypeInningsEnded, inn.Number, data, now)
	if err := d.folder.Fold(&clone, ended); err != nil {
		return rejectCode(apperrors.CodeStateDiverged, err.Error(), nil)
	}
	if inn.Number < 2 {
		return command.Accept(ended)
	}

	resultData, _ := event.EncodePayload(event.MatchEndedPayload{Result: computeResult(&clone)})
	return command.Accept(ended, command.NewEvent(cmd, event.TypeMatchEnded, 0, resultData, now))
}
