package innings

import (
	"testing"

	"github.com/creaselive/crease/internal/scoring/domain/delivery"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

var testFormat = match.Format{BallsPerOver: 6, OversPerInnings: 20, PlayersPerSide: 11}

func startedInnings() State {
	s := New(1, "t1", "t2", 0)
	s.Start("bat1", "bat2", "bwl1")
	return s
}

func annotate(out delivery.Outcome) delivery.Annotated {
	ann := delivery.Annotated{Outcome: out}
	switch out.Extra {
	case delivery.ExtraWide:
		ann.PenaltyRuns = 1
		ann.TeamRuns = 1 + out.ExtraRuns
		ann.BowlerRuns = ann.TeamRuns
	case delivery.ExtraNoBall:
		ann.PenaltyRuns = 1
		ann.TeamRuns = 1 + out.BatRuns + out.ExtraRuns
		ann.StrikerRuns = out.BatRuns
		ann.BowlerRuns = ann.TeamRuns
		ann.FacedByStriker = true
	case delivery.ExtraBye, delivery.ExtraLegBye:
		ann.Legal = true
		ann.TeamRuns = out.ExtraRuns
		ann.FacedByStriker = true
	default:
		ann.Legal = true
		ann.TeamRuns = out.BatRuns
		ann.StrikerRuns = out.BatRuns
		ann.BowlerRuns = out.BatRuns
		ann.FacedByStriker = true
	}
	if out.DeadBall {
		ann = delivery.Annotated{Outcome: out}
	}
	return ann
}

func TestSevenRunOverWithWide(t *testing.T) {
	s := startedInnings()

	// dot, single, wide, four, dot, single, dot: the wide does not advance
	// the over, so seven balls complete it for 7 runs.
	balls := []delivery.Outcome{
		{},
		{BatRuns: 1},
		{Extra: delivery.ExtraWide},
		{BatRuns: 4},
		{},
		{BatRuns: 1},
		{},
	}
	for _, b := range balls {
		s.ApplyDelivery(annotate(b), testFormat)
	}

	if s.Runs != 7 {
		t.Fatalf("runs = %d, want 7", s.Runs)
	}
	if s.LegalBalls != 6 {
		t.Fatalf("legal balls = %d, want 6", s.LegalBalls)
	}
	if s.BallInOver != 7 {
		t.Fatalf("ball numbering = %d, want 7", s.BallInOver)
	}
	if !s.OverComplete() {
		t.Fatal("over should be complete")
	}
	if s.Extras.Wides != 1 {
		t.Fatalf("wides = %d, want 1", s.Extras.Wides)
	}

	// The single on the fifth legal ball put bat1 on strike; the dot that
	// completed the over swapped the ends once more.
	if s.StrikerID != "bat2" {
		t.Fatalf("striker = %q, want bat2", s.StrikerID)
	}
}

func TestStrikeRotationAcrossOver(t *testing.T) {
	s := startedInnings()

	s.ApplyDelivery(annotate(delivery.Outcome{BatRuns: 1}), testFormat)
	if s.StrikerID != "bat2" {
		t.Fatalf("after single striker = %q, want bat2", s.StrikerID)
	}

	for range 4 {
		s.ApplyDelivery(annotate(delivery.Outcome{}), testFormat)
	}
	// Sixth legal ball, even runs: only the end-of-over swap fires.
	s.ApplyDelivery(annotate(delivery.Outcome{BatRuns: 2}), testFormat)
	if s.StrikerID != "bat1" {
		t.Fatalf("after over striker = %q, want bat1", s.StrikerID)
	}
}

func TestWideDoesNotRotateStrike(t *testing.T) {
	s := startedInnings()
	s.ApplyDelivery(annotate(delivery.Outcome{Extra: delivery.ExtraWide, ExtraRuns: 1}), testFormat)

	if s.StrikerID != "bat1" {
		t.Fatalf("striker = %q, wides must not rotate strike", s.StrikerID)
	}
	if s.Extras.Wides != 2 {
		t.Fatalf("wides = %d, want 2 (penalty plus one ran)", s.Extras.Wides)
	}
}

func TestDeadBallConsumesNumberingOnly(t *testing.T) {
	s := startedInnings()
	s.ApplyDelivery(annotate(delivery.Outcome{BatRuns: 4, DeadBall: true}), testFormat)

	if s.Runs != 0 || s.LegalBalls != 0 {
		t.Fatalf("dead ball mutated totals: %d runs, %d balls", s.Runs, s.LegalBalls)
	}
	if s.BallInOver != 1 {
		t.Fatalf("ball numbering = %d, want 1", s.BallInOver)
	}
}

func TestDismissalVacatesStrikerEnd(t *testing.T) {
	s := startedInnings()
	out := delivery.Outcome{Dismissal: delivery.DismissalBowled}
	s.ApplyDelivery(annotate(out), testFormat)

	if s.Wickets != 1 {
		t.Fatalf("wickets = %d, want 1", s.Wickets)
	}
	if !s.AwaitingReplacement {
		t.Fatal("innings must await a replacement batter")
	}
	if s.StrikerID != "" {
		t.Fatalf("striker end should be vacant, got %q", s.StrikerID)
	}
	bat := s.Batting["bat1"]
	if !bat.Out || bat.Dismissal != delivery.DismissalBowled || bat.BowlerID != "bwl1" {
		t.Fatalf("dismissal bookkeeping = %+v", bat)
	}
}

func TestRunOutOfNonStriker(t *testing.T) {
	s := startedInnings()
	out := delivery.Outcome{BatRuns: 1, Dismissal: delivery.DismissalRunOut, DismissedID: "bat2", FielderID: "fld1"}
	s.ApplyDelivery(annotate(out), testFormat)

	// The single swapped ends first, so bat2 is at the striker end when the
	// run out lands on them.
	if s.VacatedEnd != "striker" {
		t.Fatalf("vacated end = %q, want striker", s.VacatedEnd)
	}
	if s.NonStrikerID != "bat1" {
		t.Fatalf("non-striker = %q, want bat1", s.NonStrikerID)
	}
	bat := s.Batting["bat2"]
	if !bat.Out || bat.BowlerID != "" || bat.FielderID != "fld1" {
		t.Fatalf("run out bookkeeping = %+v", bat)
	}
}

func TestReplacementFillsVacatedEnd(t *testing.T) {
	s := startedInnings()
	s.ApplyDelivery(annotate(delivery.Outcome{Dismissal: delivery.DismissalBowled}), testFormat)
	s.ApplyReplacement("bat3")

	if s.AwaitingReplacement {
		t.Fatal("replacement must clear the sub-state")
	}
	if s.StrikerID != "bat3" {
		t.Fatalf("striker = %q, want bat3", s.StrikerID)
	}
	if p := s.Partnership; p.Runs != 0 || p.BatterA != "bat3" {
		t.Fatalf("partnership after replacement = %+v", p)
	}
	if !s.HasBatted("bat3") {
		t.Fatal("incoming batter must be enrolled")
	}
}

func TestBowlerHandoverAndChange(t *testing.T) {
	s := startedInnings()
	for range 6 {
		s.ApplyDelivery(annotate(delivery.Outcome{}), testFormat)
	}

	if !s.OverComplete() {
		t.Fatal("over should be complete")
	}
	if s.Eligibility.CanBowlNext("bwl1") {
		t.Fatal("bwl1 just bowled and must be ineligible")
	}
	if got := s.Bowling["bwl1"].Maidens; got != 1 {
		t.Fatalf("maidens = %d, want 1", got)
	}

	s.ApplyBowlerChange("bwl2")
	if s.OverNumber != 2 || s.BallInOver != 0 || s.LegalInOver != 0 {
		t.Fatalf("over counters = %d/%d/%d", s.OverNumber, s.BallInOver, s.LegalInOver)
	}
	if s.CurrentBowlerID != "bwl2" {
		t.Fatalf("bowler = %q, want bwl2", s.CurrentBowlerID)
	}
}

func TestCompletionPredicates(t *testing.T) {
	s := startedInnings()
	s.Wickets = 10
	if !s.AllOut(testFormat) {
		t.Fatal("ten wickets is all out for eleven a side")
	}

	s = startedInnings()
	s.LegalBalls = 120
	if !s.OversExhausted(testFormat) {
		t.Fatal("120 legal balls exhausts 20 overs")
	}

	unlimited := match.Format{BallsPerOver: 6, OversPerInnings: 0, PlayersPerSide: 11}
	if s.OversExhausted(unlimited) {
		t.Fatal("unlimited format never exhausts overs")
	}

	s.Runs = 150
	if !s.TargetReached(150) {
		t.Fatal("reaching the target must register")
	}
	if s.TargetReached(0) {
		t.Fatal("zero target means no chase")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := startedInnings()
	s.ApplyDelivery(annotate(delivery.Outcome{BatRuns: 4}), testFormat)

	clone := s.Clone()
	clone.ApplyDelivery(annotate(delivery.Outcome{BatRuns: 6}), testFormat)

	if s.Runs != 4 {
		t.Fatalf("original runs = %d, want 4", s.Runs)
	}
	if got := s.Batting["bat1"].Runs; got != 4 {
		t.Fatalf("original batter runs = %d, want 4", got)
	}
	if clone.Runs != 10 {
		t.Fatalf("clone runs = %d, want 10", clone.Runs)
	}
}
