// Package rules implements the rule validator: pure deciders that turn
// scoring commands into ledger events or structured rejections. All cricket
// procedural rules live here so every submission path shares one rule set.
package rules

// ShortRunPolicy configures how deliberate short running is penalized. The
// Laws award five penalty runs to the fielding side; some competitions only
// penalize repeat offenses, so the first-offense behavior is configurable.
type ShortRunPolicy struct {
	// PenaltyRuns is awarded to the fielding side per deliberate offense.
	// Zero disables the award entirely.
	PenaltyRuns int
	// FirstOffenseFree waives the award for the innings' first offense.
	FirstOffenseFree bool
}

// DefaultShortRunPolicy penalizes every deliberate offense with five runs.
var DefaultShortRunPolicy = ShortRunPolicy{PenaltyRuns: 5}

// Award returns the fielding-side penalty for a deliberate short run given
// the count of prior offenses in the innings.
func (p ShortRunPolicy) Award(priorOffenses int) int {
	if p.FirstOffenseFree && priorOffenses == 0 {
		return 0
	}
	return p.PenaltyRuns
}
