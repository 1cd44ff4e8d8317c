// Package stats holds the derived per-player batting and bowling figures and
// partnership data. Every value here is a pure fold over the ball ledger:
// callers must never mutate figures except through the Add/Finish helpers so
// incremental updates stay equivalent to full replay.
package stats

import (
	"fmt"

	"github.com/creaselive/crease/internal/scoring/domain/delivery"
)

// Batting captures one batter's figures within an innings.
type Batting struct {
	PlayerID  string              `json:"player_id"`
	Runs      int                 `json:"runs"`
	Balls     int                 `json:"balls"`
	Fours     int                 `json:"fours"`
	Sixes     int                 `json:"sixes"`
	Out       bool                `json:"out"`
	Dismissal delivery.Dismissal  `json:"dismissal,omitempty"`
	BowlerID  string              `json:"bowler_id,omitempty"`
	FielderID string              `json:"fielder_id,omitempty"`
}

// AddDelivery folds one faced delivery into the batter's figures.
func (b *Batting) AddDelivery(ann delivery.Annotated) {
	if ann.FacedByStriker {
		b.Balls++
	}
	b.Runs += ann.StrikerRuns
	switch ann.StrikerRuns {
	case 4:
		b.Fours++
	case 6:
		b.Sixes++
	}
}

// RecordDismissal marks the batter out with dismissal bookkeeping.
func (b *Batting) RecordDismissal(kind delivery.Dismissal, bowlerID, fielderID string) {
	b.Out = true
	b.Dismissal = kind
	if kind.CreditsBowler() {
		b.BowlerID = bowlerID
	}
	b.FielderID = fielderID
}

// StrikeRate returns runs per hundred balls, 0 for no balls faced.
func (b Batting) StrikeRate() float64 {
	if b.Balls == 0 {
		return 0
	}
	return float64(b.Runs) * 100 / float64(b.Balls)
}

// Bowling captures one bowler's figures within an innings.
type Bowling struct {
	PlayerID     string `json:"player_id"`
	LegalBalls   int    `json:"legal_balls"`
	RunsConceded int    `json:"runs_conceded"`
	Wickets      int    `json:"wickets"`
	Maidens      int    `json:"maidens"`
	Wides        int    `json:"wides"`
	NoBalls      int    `json:"no_balls"`

	// OverRuns and OverTainted track the over in progress for maiden
	// detection; they reset when the over completes. Both are derived state
	// and replay-deterministic, so they serialize with the rest.
	OverRuns    int  `json:"over_runs"`
	OverTainted bool `json:"over_tainted"`
}

// AddDelivery folds one bowled delivery into the bowler's figures.
func (o *Bowling) AddDelivery(ann delivery.Annotated) {
	if ann.Legal {
		o.LegalBalls++
	}
	o.RunsConceded += ann.BowlerRuns
	o.OverRuns += ann.BowlerRuns
	switch ann.Extra {
	case delivery.ExtraWide:
		o.Wides += ann.BowlerRuns
		o.OverTainted = true
	case delivery.ExtraNoBall:
		o.NoBalls++
		o.OverTainted = true
	}
	if ann.HasDismissal() && ann.Dismissal.CreditsBowler() {
		o.Wickets++
	}
}

// FinishOver closes the over in progress. An over is a maiden only when it
// was entirely legal deliveries conceding zero bowler-charged runs.
func (o *Bowling) FinishOver() {
	if !o.OverTainted && o.OverRuns == 0 {
		o.Maidens++
	}
	o.OverRuns = 0
	o.OverTainted = false
}

// Overs formats legal balls bowled as the conventional "O.B" notation.
func (o Bowling) Overs(ballsPerOver int) string {
	if ballsPerOver <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%d.%d", o.LegalBalls/ballsPerOver, o.LegalBalls%ballsPerOver)
}

// Economy returns runs conceded per full over, 0 for no legal balls bowled.
func (o Bowling) Economy(ballsPerOver int) float64 {
	if o.LegalBalls == 0 || ballsPerOver <= 0 {
		return 0
	}
	return float64(o.RunsConceded) * float64(ballsPerOver) / float64(o.LegalBalls)
}

// Partnership tracks the current batting pair since the last wicket or
// innings start.
type Partnership struct {
	BatterA string `json:"batter_a"`
	BatterB string `json:"batter_b"`
	Runs    int    `json:"runs"`
	Balls   int    `json:"balls"`
}

// Add folds one delivery into the partnership.
func (p *Partnership) Add(ann delivery.Annotated) {
	p.Runs += ann.TeamRuns
	if ann.Legal {
		p.Balls++
	}
}

// Reset starts a fresh partnership for a new pair.
func (p *Partnership) Reset(batterA, batterB string) {
	*p = Partnership{BatterA: batterA, BatterB: batterB}
}
