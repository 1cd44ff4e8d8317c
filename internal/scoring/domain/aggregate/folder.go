package aggregate

import (
	"fmt"
	"sync"

	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/innings"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// Folder folds ledger events into aggregate state.
//
// The folder is where the domain boundary stays deterministic: each event
// type updates exactly one aggregate slice and is replayed identically
// whether during request execution or historical reconstruction.
type Folder struct {
	foldOnce  sync.Once
	foldIndex map[event.Type]func(*State, event.Event) error
}

type foldEntry struct {
	types []event.Type
	fold  func(*State, event.Event) error
}

func foldEntries() []foldEntry {
	return []foldEntry{
		{types: []event.Type{event.TypeMatchCreated}, fold: foldMatchCreated},
		{types: []event.Type{event.TypeTossRecorded}, fold: foldTossRecorded},
		{types: []event.Type{event.TypeMatchEnded}, fold: foldMatchEnded},
		{types: []event.Type{event.TypeInningsStarted}, fold: foldInningsStarted},
		{types: []event.Type{event.TypeInningsEnded}, fold: foldInningsEnded},
		{types: []event.Type{event.TypeDeliveryRecorded}, fold: foldDeliveryRecorded},
		{types: []event.Type{event.TypeBowlerChanged}, fold: foldBowlerChanged},
		{types: []event.Type{event.TypeBatterReplaced}, fold: foldBatterReplaced},
		{types: []event.Type{event.TypeStrikeSwitched}, fold: foldStrikeSwitched},
	}
}

func (f *Folder) initFoldIndex() {
	f.foldOnce.Do(func() {
		f.foldIndex = make(map[event.Type]func(*State, event.Event) error)
		for _, entry := range foldEntries() {
			fn := entry.fold
			for _, t := range entry.types {
				f.foldIndex[t] = fn
			}
		}
	})
}

// FoldDispatchedTypes returns the union of all event types wired into the
// fold dispatch index, used by startup validation and tests.
func (f *Folder) FoldDispatchedTypes() []event.Type {
	f.initFoldIndex()
	types := make([]event.Type, 0, len(f.foldIndex))
	for t := range f.foldIndex {
		types = append(types, t)
	}
	return types
}

// Fold applies a single event to aggregate state. State transitions stay
// visible in one fold function per event type so replay behavior matches
// request-time behavior.
func (f *Folder) Fold(state *State, evt event.Event) error {
	f.initFoldIndex()
	fn, ok := f.foldIndex[evt.Type]
	if !ok {
		return fmt.Errorf("no fold function for event type %q", evt.Type)
	}
	return fn(state, evt)
}

// FoldAll applies events in order, stopping at the first failure.
func (f *Folder) FoldAll(state *State, events []event.Event) error {
	for _, evt := range events {
		if err := f.Fold(state, evt); err != nil {
			return fmt.Errorf("fold event seq %d: %w", evt.Seq, err)
		}
	}
	return nil
}

func foldMatchCreated(state *State, evt event.Event) error {
	var payload event.MatchCreatedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	state.Match = match.State{
		ID:     evt.MatchID,
		TeamA:  payload.TeamA,
		TeamB:  payload.TeamB,
		Format: payload.Format,
		Status: match.StatusSetup,
	}
	state.Innings = nil
	state.PenaltyCredits = map[string]int{}
	return nil
}

func foldTossRecorded(state *State, evt event.Event) error {
	var payload event.TossRecordedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	state.Match.Toss = match.Toss{WinnerTeamID: payload.WinnerTeamID, Decision: payload.Decision}
	state.Match.Status = match.StatusTossDone

	battingFirst := state.Match.BattingFirst()
	state.Innings = append(state.Innings, innings.New(1, battingFirst, state.Match.OpponentOf(battingFirst), 0))
	state.Match.CurrentInnings = 1
	return nil
}

func foldInningsStarted(state *State, evt event.Event) error {
	var payload event.InningsStartedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	inn := state.InningsByNumber(payload.Number)
	if inn == nil {
		return fmt.Errorf("innings %d does not exist", payload.Number)
	}
	inn.Start(payload.StrikerID, payload.NonStrikerID, payload.OpeningBowlerID)
	if credit := state.PenaltyCredits[inn.BattingTeamID]; credit > 0 {
		inn.Runs += credit
		state.PenaltyCredits[inn.BattingTeamID] = 0
	}
	if state.Match.Status == match.StatusTossDone {
		state.Match.Status = match.StatusInProgress
	}
	return nil
}

func foldDeliveryRecorded(state *State, evt event.Event) error {
	var payload event.DeliveryRecordedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	inn := state.InningsByNumber(evt.InningsNumber)
	if inn == nil {
		return fmt.Errorf("innings %d does not exist", evt.InningsNumber)
	}
	inn.ApplyDelivery(payload.Ball, state.Match.Format)
	if payload.Ball.PenaltyToFielding > 0 {
		if state.PenaltyCredits == nil {
			state.PenaltyCredits = map[string]int{}
		}
		state.PenaltyCredits[inn.BowlingTeamID] += payload.Ball.PenaltyToFielding
	}
	return nil
}

func foldBowlerChanged(state *State, evt event.Event) error {
	var payload event.BowlerChangedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	inn := state.InningsByNumber(evt.InningsNumber)
	if inn == nil {
		return fmt.Errorf("innings %d does not exist", evt.InningsNumber)
	}
	inn.ApplyBowlerChange(payload.BowlerID)
	return nil
}

func foldBatterReplaced(state *State, evt event.Event) error {
	var payload event.BatterReplacedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	inn := state.InningsByNumber(evt.InningsNumber)
	if inn == nil {
		return fmt.Errorf("innings %d does not exist", evt.InningsNumber)
	}
	inn.ApplyReplacement(payload.IncomingID)
	return nil
}

func foldStrikeSwitched(state *State, evt event.Event) error {
	inn := state.InningsByNumber(evt.InningsNumber)
	if inn == nil {
		return fmt.Errorf("innings %d does not exist", evt.InningsNumber)
	}
	inn.ApplySwitchStrike()
	return nil
}

func foldInningsEnded(state *State, evt event.Event) error {
	var payload event.InningsEndedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	inn := state.InningsByNumber(payload.Number)
	if inn == nil {
		return fmt.Errorf("innings %d does not exist", payload.Number)
	}
	inn.Complete(payload.Reason)

	// The second innings is created automatically with the teams swapped and
	// a target of the completed total plus one.
	if payload.Number == 1 && state.InningsByNumber(2) == nil {
		target := state.TeamTotal(inn.BattingTeamID) + 1
		state.Innings = append(state.Innings, innings.New(2, inn.BowlingTeamID, inn.BattingTeamID, target))
		state.Match.CurrentInnings = 2
	}
	return nil
}

func foldMatchEnded(state *State, evt event.Event) error {
	var payload event.MatchEndedPayload
	if err := event.DecodePayload(evt, &payload); err != nil {
		return err
	}
	state.Match.Status = match.StatusCompleted
	state.Match.Result = payload.Result
	return nil
}
