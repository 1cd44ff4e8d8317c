package rules

import (
	"fmt"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/delivery"
)

// annotate derives the accepted-outcome fields from a submitted delivery
// outcome: legality, automatic penalty runs, and the run attribution split
// the statistics fold consumes. It validates the payload shape and the
// extra/dismissal combination rules; state-dependent checks stay in the
// decider. The same outcome always annotates to the same result, so
// re-validation after a client retry is idempotent.
func annotate(out delivery.Outcome, policy ShortRunPolicy, priorOffenses int) (delivery.Annotated, *command.Rejection) {
	if !out.Extra.IsValid() {
		return delivery.Annotated{}, &command.Rejection{
			Code:    string(apperrors.CodeDeliveryInvalidExtra),
			Message: fmt.Sprintf("unknown extra classification %q", out.Extra),
		}
	}
	if !out.Dismissal.IsValid() {
		return delivery.Annotated{}, &command.Rejection{
			Code:    string(apperrors.CodeDismissalInvalidKind),
			Message: fmt.Sprintf("unknown dismissal kind %q", out.Dismissal),
		}
	}
	if out.BatRuns < 0 || out.ExtraRuns < 0 || out.ShortRuns < 0 {
		return delivery.Annotated{}, &command.Rejection{
			Code:    string(apperrors.CodeDeliveryInvalidRuns),
			Message: "run counts must not be negative",
		}
	}

	if out.DeadBall {
		// A dead ball nullifies runs and dismissals but consumes numbering.
		ann := delivery.Annotated{Outcome: out}
		ann.Dismissal = delivery.DismissalNone
		ann.DismissedID = ""
		ann.FielderID = ""
		return ann, nil
	}

	if rej := checkDismissalOnExtra(out); rej != nil {
		return delivery.Annotated{}, rej
	}
	if rej := checkRunShape(out); rej != nil {
		return delivery.Annotated{}, rej
	}

	netBat, netExtra, rej := applyShortRuns(out)
	if rej != nil {
		return delivery.Annotated{}, rej
	}

	ann := delivery.Annotated{Outcome: out}
	switch out.Extra {
	case delivery.ExtraWide:
		ann.Legal = false
		ann.PenaltyRuns = 1
		ann.TeamRuns = 1 + netExtra
		ann.BowlerRuns = ann.TeamRuns
	case delivery.ExtraNoBall:
		ann.Legal = false
		ann.PenaltyRuns = 1
		ann.TeamRuns = 1 + netBat + netExtra
		ann.StrikerRuns = netBat
		ann.BowlerRuns = ann.TeamRuns
		ann.FacedByStriker = true
	case delivery.ExtraBye, delivery.ExtraLegBye:
		ann.Legal = true
		ann.TeamRuns = netExtra
		ann.FacedByStriker = true
	case delivery.ExtraPenalty:
		ann.Legal = true
		ann.PenaltyRuns = delivery.PenaltyAwardRuns
		ann.TeamRuns = delivery.PenaltyAwardRuns
		ann.FacedByStriker = true
	default:
		ann.Legal = true
		ann.TeamRuns = netBat
		ann.StrikerRuns = netBat
		ann.BowlerRuns = netBat
		ann.FacedByStriker = true
	}

	if out.DeliberateShort {
		ann.PenaltyToFielding = policy.Award(priorOffenses)
	}
	return ann, nil
}

// checkDismissalOnExtra enforces which dismissal kinds can stand on illegal
// deliveries: a no-ball permits only run-out and obstructing the field, a
// wide additionally permits stumped and hit wicket.
func checkDismissalOnExtra(out delivery.Outcome) *command.Rejection {
	if !out.HasDismissal() {
		return nil
	}
	switch out.Extra {
	case delivery.ExtraNoBall:
		if !out.Dismissal.AllowedOnNoBall() {
			return &command.Rejection{
				Code:     string(apperrors.CodeDismissalInvalidOnNoBall),
				Message:  fmt.Sprintf("%s cannot stand on a no-ball", out.Dismissal),
				Metadata: map[string]string{"dismissal": string(out.Dismissal)},
			}
		}
	case delivery.ExtraWide:
		if !out.Dismissal.AllowedOnWide() {
			return &command.Rejection{
				Code:     string(apperrors.CodeDismissalInvalidOnWide),
				Message:  fmt.Sprintf("%s cannot stand on a wide", out.Dismissal),
				Metadata: map[string]string{"dismissal": string(out.Dismissal)},
			}
		}
	}
	return nil
}

// checkRunShape enforces per-extra run accounting: the striker cannot score
// off a wide, byes and leg-byes carry no bat runs, and a penalty award
// carries no runs of its own.
func checkRunShape(out delivery.Outcome) *command.Rejection {
	reject := func(message string) *command.Rejection {
		return &command.Rejection{
			Code:     string(apperrors.CodeDeliveryInvalidRuns),
			Message:  message,
			Metadata: map[string]string{"extra": string(out.Extra)},
		}
	}
	switch out.Extra {
	case delivery.ExtraWide:
		if out.BatRuns != 0 {
			return reject("bat runs cannot be scored off a wide")
		}
	case delivery.ExtraBye, delivery.ExtraLegBye:
		if out.BatRuns != 0 {
			return reject("byes and leg-byes carry no bat runs")
		}
		if out.ExtraRuns < 1 {
			return reject("byes and leg-byes require at least one run")
		}
	case delivery.ExtraPenalty:
		if out.BatRuns != 0 || out.ExtraRuns != 0 {
			return reject("a penalty award carries no scored runs")
		}
	case delivery.ExtraNone:
		if out.ExtraRuns != 0 {
			return reject("extra runs require an extras classification")
		}
	}
	return nil
}

// applyShortRuns deducts attempted-but-invalid runs from the pool they were
// attempted in: bat runs for regular and no-ball deliveries, extra runs for
// wides, byes, and leg-byes.
func applyShortRuns(out delivery.Outcome) (netBat, netExtra int, rej *command.Rejection) {
	netBat, netExtra = out.BatRuns, out.ExtraRuns
	if out.ShortRuns == 0 {
		if out.DeliberateShort {
			return 0, 0, &command.Rejection{
				Code:    string(apperrors.CodeDeliveryInvalidShortRun),
				Message: "deliberate short running requires at least one short run",
			}
		}
		return netBat, netExtra, nil
	}

	reject := func(message string) *command.Rejection {
		return &command.Rejection{
			Code:    string(apperrors.CodeDeliveryInvalidShortRun),
			Message: message,
			Metadata: map[string]string{
				"short_runs": fmt.Sprintf("%d", out.ShortRuns),
				"extra":      string(out.Extra),
			},
		}
	}
	switch out.Extra {
	case delivery.ExtraNone, delivery.ExtraNoBall:
		if out.ShortRuns > out.BatRuns {
			return 0, 0, reject("short runs exceed bat runs")
		}
		netBat -= out.ShortRuns
	case delivery.ExtraWide, delivery.ExtraBye, delivery.ExtraLegBye:
		if out.ShortRuns > out.ExtraRuns {
			return 0, 0, reject("short runs exceed runs taken")
		}
		netExtra -= out.ShortRuns
	case delivery.ExtraPenalty:
		return 0, 0, reject("a penalty award has no runs to fall short on")
	}
	return netBat, netExtra, nil
}
