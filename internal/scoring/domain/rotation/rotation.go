// Package rotation derives strike assignment and bowler eligibility from
// accumulated deliveries. Strike rotation is a pure function of the prior
// ends, the runs off the bat, and whether the over just completed.
package rotation

// End identifies which end of the pitch a batter occupies.
type End string

const (
	// EndStriker is the end facing the bowling.
	EndStriker End = "striker"
	// EndNonStriker is the end away from the bowling.
	EndNonStriker End = "non_striker"
)

// NextEnds returns the striker/non-striker assignment after a legal, non-dead
// delivery. The odd-run swap and the end-of-over swap are combined into a
// single exclusive-or so that both firing on the same ball cancel out rather
// than toggling twice.
func NextEnds(striker, nonStriker string, batRuns int, overCompleted bool) (string, string) {
	oddRuns := batRuns%2 == 1
	if oddRuns != overCompleted {
		return nonStriker, striker
	}
	return striker, nonStriker
}

// Swapped reports whether NextEnds would change the assignment, useful for
// commentary and notification payloads.
func Swapped(batRuns int, overCompleted bool) bool {
	return (batRuns%2 == 1) != overCompleted
}

// Eligibility tracks the single fact bowler rotation depends on: who bowled
// the over that just finished. The rule validator rejects a nominated bowler
// equal to this pointer.
type Eligibility struct {
	// LastOverBowlerID is the bowler of the immediately preceding over.
	LastOverBowlerID string `json:"last_over_bowler_id"`
}

// CanBowlNext reports whether the nominated bowler may bowl the next over.
func (e Eligibility) CanBowlNext(bowlerID string) bool {
	if bowlerID == "" {
		return false
	}
	return bowlerID != e.LastOverBowlerID
}

// HandOver records the completed over's bowler as the new eligibility pointer.
func (e *Eligibility) HandOver(bowlerID string) {
	e.LastOverBowlerID = bowlerID
}
