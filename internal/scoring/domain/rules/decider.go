package rules

import (
	"fmt"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// Decider turns scoring commands into decisions against current aggregate
// state. It is pure: the same state and command always produce the same
// decision, which makes transport-level retries safe.
type Decider struct {
	policy ShortRunPolicy
	folder aggregate.Folder
}

// NewDecider returns a decider with the given short-run policy.
func NewDecider(policy ShortRunPolicy) *Decider {
	return &Decider{policy: policy}
}

// Decide dispatches a validated command to its rule set. Unknown command
// types return an empty decision; the engine treats that as a routing fault.
func (d *Decider) Decide(state *aggregate.State, cmd command.Command, now time.Time) command.Decision {
	switch cmd.Type {
	case command.TypeCreateMatch:
		return d.decideCreateMatch(state, cmd, now)
	case command.TypeRecordToss:
		return d.decideRecordToss(state, cmd, now)
	case command.TypeStartInnings:
		return d.decideStartInnings(state, cmd, now)
	case command.TypeSubmitDelivery:
		return d.decideSubmitDelivery(state, cmd, now)
	case command.TypeChangeBowler:
		return d.decideChangeBowler(state, cmd, now)
	case command.TypeSelectReplacement:
		return d.decideSelectReplacement(state, cmd, now)
	case command.TypeSwitchStrike:
		return d.decideSwitchStrike(state, cmd, now)
	case command.TypeEndInnings:
		return d.decideEndInnings(state, cmd, now)
	case command.TypeEndMatch:
		return d.decideEndMatch(state, cmd, now)
	}
	return command.Decision{}
}

// rejectCode builds a single-rejection decision from a structured error code.
func rejectCode(code apperrors.Code, message string, metadata map[string]string) command.Decision {
	return command.Reject(command.Rejection{
		Code:     string(code),
		Message:  message,
		Metadata: metadata,
	})
}

// rejectInvalidPayload covers a command whose payload is not the struct its
// type requires. This is a caller programming fault, not a rule violation.
func rejectInvalidPayload(cmd command.Command) command.Decision {
	return rejectCode(apperrors.CodeUnknown,
		fmt.Sprintf("command %s carries an unexpected payload type", cmd.Type), nil)
}

// inningsGuard applies the shared preconditions of every innings-scoped
// command: the match must be in progress, the addressed innings must exist,
// be the current one, be started, and not be complete.
func inningsGuard(state *aggregate.State, cmd command.Command) (*innings.State, *command.Decision) {
	if state.Match.ID == "" {
		d := rejectCode(apperrors.CodeNotFound, "match does not exist", nil)
		return nil, &d
	}
	if state.Match.Status == match.StatusCompleted {
		d := rejectCode(apperrors.CodeMatchAlreadyComplete, "match is already complete", nil)
		return nil, &d
	}
	if state.Match.Status != match.StatusInProgress {
		d := rejectCode(apperrors.CodeMatchNotInProgress,
			fmt.Sprintf("match is %s, not in progress", state.Match.Status), nil)
		return nil, &d
	}
	inn := state.InningsByNumber(cmd.InningsNumber)
	if inn == nil {
		d := rejectCode(apperrors.CodeNotFound,
			fmt.Sprintf("innings %d does not exist", cmd.InningsNumber), nil)
		return nil, &d
	}
	if cmd.InningsNumber != state.Match.CurrentInnings {
		d := rejectCode(apperrors.CodeInningsNotCurrent,
			fmt.Sprintf("innings %d is not the current innings", cmd.InningsNumber),
			map[string]string{"current_innings": fmt.Sprintf("%d", state.Match.CurrentInnings)})
		return nil, &d
	}
	if inn.Completed {
		d := rejectCode(apperrors.CodeInningsAlreadyComplete,
			fmt.Sprintf("innings %d is already complete", inn.Number),
			map[string]string{"completion_reason": string(inn.CompletionReason)})
		return nil, &d
	}
	if !inn.Started {
		d := rejectCode(apperrors.CodeInningsNotStarted,
			fmt.Sprintf("innings %d has not started", inn.Number), nil)
		return nil, &d
	}
	return inn, nil
}
