package rules

import (
	"fmt"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
)

// decideSubmitDelivery validates one proposed delivery outcome against the
// innings snapshot and, when accepted, emits the delivery event together with
// any innings or match completion it triggers. Emitting the completions in
// the same event batch is what lets undo reverse them with the delivery.
func (d *Decider) decideSubmitDelivery(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	inn, rejected := inningsGuard(state, cmd)
	if rejected != nil {
		return *rejected
	}
	if inn.AwaitingReplacement {
		return rejectCode(apperrors.CodeAwaitingReplacement,
			"a replacement batter must be selected before the next delivery",
			map[string]string{"vacated_end": string(inn.VacatedEnd)})
	}
	if inn.OverComplete() {
		return rejectCode(apperrors.CodeOverAlreadyComplete,
			fmt.Sprintf("over %d is complete; nominate the next bowler", inn.OverNumber),
			map[string]string{
				"over":        fmt.Sprintf("%d", inn.OverNumber),
				"legal_balls": fmt.Sprintf("%d", inn.LegalInOver),
				"last_bowler": inn.Eligibility.LastOverBowlerID,
			})
	}

	payload, ok := cmd.Payload.(command.SubmitDeliveryPayload)
	if !ok {
		return rejectInvalidPayload(cmd)
	}
	ann, rej := annotate(payload.Outcome, d.policy, inn.DeliberateShorts)
	if rej != nil {
		return command.Reject(*rej)
	}

	if ann.HasDismissal() && !ann.DeadBall {
		if ann.DismissedID != "" && ann.DismissedID != inn.StrikerID && ann.DismissedID != inn.NonStrikerID {
			return rejectCode(apperrors.CodeDismissalUnknownPlayer,
				fmt.Sprintf("player %s is not at the crease", ann.DismissedID),
				map[string]string{
					"striker":     inn.StrikerID,
					"non_striker": inn.NonStrikerID,
				})
		}
		if inn.Wickets+1 > state.Match.Format.MaxWickets() {
			return rejectCode(apperrors.CodeWicketLimitExceeded,
				fmt.Sprintf("innings wicket limit of %d reached", state.Match.Format.MaxWickets()),
				map[string]string{"wickets": fmt.Sprintf("%d", inn.Wickets)})
		}
	}

	data, _ := event.EncodePayload(event.DeliveryRecordedPayload{
		OverNumber:   inn.OverNumber,
		BallInOver:   inn.BallInOver + 1,
		StrikerID:    inn.StrikerID,
		NonStrikerID: inn.NonStrikerID,
		BowlerID:     inn.CurrentBowlerID,
		Ball:         ann,
	})
	recorded := command.NewEvent(cmd, event.TypeDeliveryRecorded, inn.Number, data, now)

	clone := state.Clone()
	if err := d.folder.Fold(&clone, recorded); err != nil {
		return rejectCode(apperrors.CodeStateDiverged, err.Error(), nil)
	}
	completions, err := d.completionEvents(&clone, cmd, now)
	if err != nil {
		return rejectCode(apperrors.CodeStateDiverged, err.Error(), nil)
	}
	return command.Accept(append([]event.Event{recorded}, completions...)...)
}

// completionEvents inspects the folded-forward state after a delivery and
// emits the innings and match completions it triggered. The clone already
// contains the delivery; completion events are folded in as they are built
// so the match result sees the closed innings.
func (d *Decider) completionEvents(clone *aggregate.State, cmd command.Command, now time.Time) ([]event.Event, error) {
	inn := clone.InningsByNumber(cmd.InningsNumber)
	if inn == nil {
		return nil, fmt.Errorf("innings %d missing after fold", cmd.InningsNumber)
	}

	var reason innings.Reason
	switch {
	case inn.Number == 2 && inn.TargetReached(clone.ChaseTarget()):
		reason = innings.ReasonTargetReached
	case inn.AllOut(clone.Match.Format):
		reason = innings.ReasonAllOut
	case inn.OversExhausted(clone.Match.Format):
		reason = innings.ReasonOversExhausted
	default:
		return nil, nil
	}

	data, _ := event.EncodePayload(event.InningsEndedPayload{
		Number:  inn.Number,
		Reason:  reason,
		Runs:    inn.Runs,
		Wickets: inn.Wickets,
	})
	ended := command.NewEvent(cmd, event.TypeInningsEnded, inn.Number, data, now)
	if err := d.folder.Fold(clone, ended); err != nil {
		return nil, err
	}
	if inn.Number < 2 {
		return []event.Event{ended}, nil
	}

	resultData, _ := event.EncodePayload(event.MatchEndedPayload{Result: computeResult(clone)})
	matchEnded := command.NewEvent(cmd, event.TypeMatchEnded, 0, resultData, now)
	if err := d.folder.Fold(clone, matchEnded); err != nil {
		return nil, err
	}
	return []event.Event{ended, matchEnded}, nil
}
