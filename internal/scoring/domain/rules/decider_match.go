package rules

import (
	"strings"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

func (d *Decider) decideCreateMatch(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	if state.Match.ID != "" {
		return rejectCode(apperrors.CodeMatchInvalidTransition, "match already exists", nil)
	}
	payload, ok := cmd.Payload.(command.CreateMatchPayload)
	if !ok {
		return rejectInvalidPayload(cmd)
	}

	teamA, teamB := payload.TeamA, payload.TeamB
	teamA.ID = strings.TrimSpace(teamA.ID)
	teamB.ID = strings.TrimSpace(teamB.ID)
	if teamA.ID == "" || teamB.ID == "" {
		return rejectCode(apperrors.CodeMatchInvalidTeam, "both team ids are required", nil)
	}
	if teamA.ID == teamB.ID {
		return rejectCode(apperrors.CodeMatchInvalidTeam, "teams must be distinct",
			map[string]string{"team_id": teamA.ID})
	}

	format := payload.Format
	if format == (match.Format{}) {
		format = match.DefaultFormat
	}
	if !format.Validate() {
		return rejectCode(apperrors.CodeMatchInvalidFormat, "format parameters are not usable", nil)
	}

	data, _ := event.EncodePayload(event.MatchCreatedPayload{TeamA: teamA, TeamB: teamB, Format: format})
	return command.Accept(command.NewEvent(cmd, event.TypeMatchCreated, 0, data, now))
}

func (d *Decider) decideRecordToss(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	if state.Match.ID == "" {
		return rejectCode(apperrors.CodeNotFound, "match does not exist", nil)
	}
	if state.Match.Status == match.StatusCompleted {
		return rejectCode(apperrors.CodeMatchAlreadyComplete, "match is already complete", nil)
	}
	if state.Match.Status != match.StatusSetup {
		return rejectCode(apperrors.CodeTossAlreadyRecorded, "toss is already recorded",
			map[string]string{"winner_team_id": state.Match.Toss.WinnerTeamID})
	}
	payload, ok := cmd.Payload.(command.RecordTossPayload)
	if !ok {
		return rejectInvalidPayload(cmd)
	}
	if !state.Match.HasTeam(payload.WinnerTeamID) {
		return rejectCode(apperrors.CodeMatchInvalidTeam, "toss winner is not a participating team",
			map[string]string{"team_id": payload.WinnerTeamID})
	}
	if !payload.Decision.IsValid() {
		return rejectCode(apperrors.CodeTossInvalidDecision, "toss decision must be bat or bowl",
			map[string]string{"decision": string(payload.Decision)})
	}

	data, _ := event.EncodePayload(event.TossRecordedPayload{
		WinnerTeamID: payload.WinnerTeamID,
		Decision:     payload.Decision,
	})
	return command.Accept(command.NewEvent(cmd, event.TypeTossRecorded, 0, data, now))
}

// decideEndMatch forces match completion: the current innings, if live, is
// declared closed, and the result is computed from the totals as they stand.
func (d *Decider) decideEndMatch(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	if state.Match.ID == "" {
		return rejectCode(apperrors.CodeNotFound, "match does not exist", nil)
	}
	if state.Match.Status == match.StatusCompleted {
		return rejectCode(apperrors.CodeMatchAlreadyComplete, "match is already complete", nil)
	}

	clone := state.Clone()
	var events []event.Event
	if inn := clone.CurrentInnings(); inn != nil && inn.InProgress() {
		data, _ := event.EncodePayload(event.InningsEndedPayload{
			Number:  inn.Number,
			Reason:  innings.ReasonDeclared,
			Runs:    inn.Runs,
			Wickets: inn.Wickets,
		})
		evt := command.NewEvent(cmd, event.TypeInningsEnded, inn.Number, data, now)
		if err := d.folder.Fold(&clone, evt); err != nil {
			return rejectCode(apperrors.CodeStateDiverged, err.Error(), nil)
		}
		events = append(events, evt)
	}

	data, _ := event.EncodePayload(event.MatchEndedPayload{Result: computeResult(&clone)})
	events = append(events, command.NewEvent(cmd, event.TypeMatchEnded, 0, data, now))
	return command.Accept(events...)
}
