package rules

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/event"
)

func (d *Decider) decideChangeBowler(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	inn, rejected := inningsGuard(state, cmd)
	if rejected != nil {
		return *rejected
	}
	payload, ok := cmd.Payload.(command.ChangeBowlerPayload)
	if !ok {
		return rejectInvalidPayload(cmd)
	}
	bowlerID := strings.TrimSpace(payload.BowlerID)
	if bowlerID == "" {
		return rejectCode(apperrors.CodeBowlerInvalid, "a bowler id is required", nil)
	}
	if !inn.OverComplete() {
		return rejectCode(apperrors.CodeOverInProgress,
			fmt.Sprintf("over %d still has %d legal deliveries remaining",
				inn.OverNumber, state.Match.Format.BallsPerOver-inn.LegalInOver),
			map[string]string{
				"over":           fmt.Sprintf("%d", inn.OverNumber),
				"legal_balls":    fmt.Sprintf("%d", inn.LegalInOver),
				"current_bowler": inn.CurrentBowlerID,
			})
	}
	if !inn.Eligibility.CanBowlNext(bowlerID) {
		return rejectCode(apperrors.CodeConsecutiveOverByBowler,
			fmt.Sprintf("%s bowled the previous over", bowlerID),
			map[string]string{
				"bowler": bowlerID,
				"over":   fmt.Sprintf("%d", inn.OverNumber),
			})
	}

	data, _ := event.EncodePayload(event.BowlerChangedPayload{
		OverNumber: inn.OverNumber + 1,
		BowlerID:   bowlerID,
	})
	return command.Accept(command.NewEvent(cmd, event.TypeBowlerChanged, inn.Number, data, now))
}

func (d *Decider) decideSelectReplacement(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	inn, rejected := inningsGuard(state, cmd)
	if rejected != nil {
		return *rejected
	}
	if !inn.AwaitingReplacement {
		return rejectCode(apperrors.CodeNotAwaitingReplacement,
			"no replacement batter is awaited", nil)
	}
	payload, ok := cmd.Payload.(command.SelectReplacementPayload)
	if !ok {
		return rejectInvalidPayload(cmd)
	}
	playerID := strings.TrimSpace(payload.PlayerID)
	if playerID == "" {
		return rejectCode(apperrors.CodeReplacementInvalidBatter, "a player id is required", nil)
	}
	if inn.HasBatted(playerID) {
		return rejectCode(apperrors.CodeReplacementInvalidBatter,
			fmt.Sprintf("player %s already batted this innings", playerID),
			map[string]string{"player_id": playerID})
	}

	data, _ := event.EncodePayload(event.BatterReplacedPayload{
		IncomingID: playerID,
		End:        string(inn.VacatedEnd),
	})
	return command.Accept(command.NewEvent(cmd, event.TypeBatterReplaced, inn.Number, data, now))
}

func (d *Decider) decideSwitchStrike(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	inn, rejected := inningsGuard(state, cmd)
	if rejected != nil {
		return *rejected
	}
	if inn.AwaitingReplacement {
		return rejectCode(apperrors.CodeAwaitingReplacement,
			"cannot switch strike while a replacement batter is awaited",
			map[string]string{"vacated_end": string(inn.VacatedEnd)})
	}

	data, _ := event.EncodePayload(event.StrikeSwitchedPayload{
		StrikerID:    inn.NonStrikerID,
		NonStrikerID: inn.StrikerID,
	})
	return command.Accept(command.NewEvent(cmd, event.TypeStrikeSwitched, inn.Number, data, now))
}
