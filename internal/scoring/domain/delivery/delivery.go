// Package delivery defines the atomic delivery (ball) outcome types and the
// derived annotations the rule validator attaches to accepted outcomes.
package delivery

// Extra classifies runs not credited to the striker's personal tally.
type Extra string

const (
	// ExtraNone marks a regular delivery with no extras.
	ExtraNone Extra = "none"
	// ExtraWide marks a wide delivery (illegal, automatic penalty run).
	ExtraWide Extra = "wide"
	// ExtraNoBall marks a no-ball delivery (illegal, automatic penalty run).
	ExtraNoBall Extra = "no_ball"
	// ExtraBye marks runs taken without the ball touching the bat.
	ExtraBye Extra = "bye"
	// ExtraLegBye marks runs taken off the batter's body.
	ExtraLegBye Extra = "leg_bye"
	// ExtraPenalty marks a 5-run penalty award to the batting side.
	ExtraPenalty Extra = "penalty"
)

// IsValid reports whether the extra classification is known.
func (e Extra) IsValid() bool {
	switch e {
	case ExtraNone, ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye, ExtraPenalty:
		return true
	}
	return false
}

// Illegal reports whether deliveries with this extra do not count toward the
// over's legal-delivery quota.
func (e Extra) Illegal() bool {
	return e == ExtraWide || e == ExtraNoBall
}

// PenaltyAwardRuns is the fixed award for a penalty extra under the Laws.
const PenaltyAwardRuns = 5

// Dismissal identifies how a batter was given out.
type Dismissal string

const (
	// DismissalNone marks a delivery with no wicket.
	DismissalNone Dismissal = ""
	// DismissalBowled credits the bowler with a bowled wicket.
	DismissalBowled Dismissal = "bowled"
	// DismissalCaught credits the bowler and names a catching fielder.
	DismissalCaught Dismissal = "caught"
	// DismissalLBW credits the bowler with a leg-before wicket.
	DismissalLBW Dismissal = "lbw"
	// DismissalRunOut records a run-out; it may fall on either batter.
	DismissalRunOut Dismissal = "run_out"
	// DismissalStumped credits the bowler via the wicket-keeper.
	DismissalStumped Dismissal = "stumped"
	// DismissalHitWicket credits the bowler when the striker breaks the wicket.
	DismissalHitWicket Dismissal = "hit_wicket"
	// DismissalObstructing records obstructing-the-field; not a bowler wicket.
	DismissalObstructing Dismissal = "obstructing_field"
)

// IsValid reports whether the dismissal kind is known.
func (d Dismissal) IsValid() bool {
	switch d {
	case DismissalNone, DismissalBowled, DismissalCaught, DismissalLBW,
		DismissalRunOut, DismissalStumped, DismissalHitWicket, DismissalObstructing:
		return true
	}
	return false
}

// CreditsBowler reports whether the dismissal counts toward the bowler's
// wicket tally.
func (d Dismissal) CreditsBowler() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalHitWicket:
		return true
	}
	return false
}

// AllowedOnNoBall reports whether the dismissal can stand on a no-ball.
func (d Dismissal) AllowedOnNoBall() bool {
	return d == DismissalRunOut || d == DismissalObstructing
}

// AllowedOnWide reports whether the dismissal can stand on a wide.
func (d Dismissal) AllowedOnWide() bool {
	switch d {
	case DismissalRunOut, DismissalStumped, DismissalHitWicket, DismissalObstructing:
		return true
	}
	return false
}

// Outcome is the structured delivery payload an external producer submits.
// The engine derives striker, non-striker, and bowler from aggregate state;
// the producer only describes what happened to the ball.
type Outcome struct {
	// BatRuns is the count of runs scored off the bat, before short-run deductions.
	BatRuns int `json:"bat_runs"`
	// Extra classifies the delivery's extras, if any.
	Extra Extra `json:"extra"`
	// ExtraRuns counts runs attributed to the extra (wides ran, byes, etc.)
	// beyond the automatic one-run penalty of wides and no-balls.
	ExtraRuns int `json:"extra_runs"`
	// Dismissal identifies the wicket kind, if any.
	Dismissal Dismissal `json:"dismissal,omitempty"`
	// DismissedID names the dismissed batter. Empty means the striker.
	DismissedID string `json:"dismissed_id,omitempty"`
	// FielderID names the fielder involved in the dismissal, if applicable.
	FielderID string `json:"fielder_id,omitempty"`
	// DeadBall nullifies all runs and dismissals but consumes numbering.
	DeadBall bool `json:"dead_ball,omitempty"`
	// ShortRuns counts attempted-but-invalid runs to deduct.
	ShortRuns int `json:"short_runs,omitempty"`
	// DeliberateShort flags deliberate short running for penalty policy.
	DeliberateShort bool `json:"deliberate_short,omitempty"`
	// Commentary carries free-text commentary for the ball record.
	Commentary string `json:"commentary,omitempty"`
}

// Boundary reports whether the bat runs came as an untouched boundary.
func (o Outcome) Boundary() bool {
	return o.BatRuns == 4 || o.BatRuns == 6
}

// HasDismissal reports whether the outcome records a wicket.
func (o Outcome) HasDismissal() bool {
	return o.Dismissal != DismissalNone
}

// Annotated is an accepted outcome plus the derived fields the validator
// attaches: legality, penalty runs, and the run attribution split the
// statistics fold consumes.
type Annotated struct {
	Outcome

	// Legal reports whether the delivery counts toward the over's quota.
	Legal bool `json:"legal"`
	// PenaltyRuns counts automatic penalty runs owed to the batting side.
	PenaltyRuns int `json:"penalty_runs"`
	// PenaltyToFielding counts penalty runs awarded to the fielding side
	// (deliberate short running policy).
	PenaltyToFielding int `json:"penalty_to_fielding,omitempty"`
	// TeamRuns is the total added to the batting side's innings.
	TeamRuns int `json:"team_runs"`
	// StrikerRuns is the portion credited to the striker's personal tally.
	StrikerRuns int `json:"striker_runs"`
	// BowlerRuns is the portion charged against the bowler.
	BowlerRuns int `json:"bowler_runs"`
	// FacedByStriker reports whether the ball counts against balls faced.
	FacedByStriker bool `json:"faced_by_striker"`
}
