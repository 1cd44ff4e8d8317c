package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/delivery"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/match"
	"github.com/creaselive/crease/internal/scoring/storage"
	"github.com/creaselive/crease/internal/scoring/storage/memory"
)

var testNow = time.Date(2025, 6, 14, 15, 0, 0, 0, time.UTC)

type captureNotifier struct {
	notes []Notification
}

func (c *captureNotifier) Notify(_ context.Context, n Notification) {
	c.notes = append(c.notes, n)
}

func newTestEngine(store storage.Store) (*Engine, *captureNotifier) {
	notifier := &captureNotifier{}
	e := New(store, notifier)
	e.clock = func() time.Time { return testNow }
	seq := 0
	e.newID = func() string {
		seq++
		return fmt.Sprintf("req-%d", seq)
	}
	return e, notifier
}

// oneOverFormat keeps scenario tests short: a single over per innings.
var oneOverFormat = match.Format{BallsPerOver: 6, OversPerInnings: 1, PlayersPerSide: 11}

func mustExecute(t *testing.T, e *Engine, cmd command.Command) Result {
	t.Helper()
	res, err := e.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("execute %s: %v", cmd.Type, err)
	}
	if !res.Decision.Accepted() {
		t.Fatalf("execute %s rejected: %+v", cmd.Type, res.Decision.Rejections)
	}
	return res
}

func setupMatch(t *testing.T, e *Engine, format match.Format) string {
	t.Helper()
	res := mustExecute(t, e, command.Command{
		Type:    command.TypeCreateMatch,
		MatchID: "match-1",
		Payload: command.CreateMatchPayload{
			TeamA:  match.Team{ID: "team-a", Name: "Avon"},
			TeamB:  match.Team{ID: "team-b", Name: "Barchester"},
			Format: format,
		},
	})
	mustExecute(t, e, command.Command{
		Type:    command.TypeRecordToss,
		MatchID: res.Command.MatchID,
		Payload: command.RecordTossPayload{WinnerTeamID: "team-a", Decision: match.TossDecisionBat},
	})
	mustExecute(t, e, command.Command{
		Type:          command.TypeStartInnings,
		MatchID:       res.Command.MatchID,
		InningsNumber: 1,
		Payload: command.StartInningsPayload{
			StrikerID:       "bat-1",
			NonStrikerID:    "bat-2",
			OpeningBowlerID: "bwl-1",
		},
	})
	return res.Command.MatchID
}

func submitDelivery(t *testing.T, e *Engine, matchID string, inningsNumber int, out delivery.Outcome) Result {
	t.Helper()
	return mustExecute(t, e, command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: inningsNumber,
		Payload:       command.SubmitDeliveryPayload{Outcome: out},
	})
}

func stateJSON(t *testing.T, e *Engine, matchID string) string {
	t.Helper()
	state, err := e.State(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	return string(data)
}

func TestExecuteFullMatch(t *testing.T) {
	e, _ := newTestEngine(memory.New())
	matchID := setupMatch(t, e, oneOverFormat)

	// First innings: six singles, the over exhausts the innings.
	for i := 0; i < 6; i++ {
		res := submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone})
		if i < 5 && len(res.Events) != 1 {
			t.Fatalf("ball %d emitted %d events", i+1, len(res.Events))
		}
		if i == 5 && len(res.Events) != 2 {
			t.Fatalf("final ball emitted %d events, want delivery plus innings end", len(res.Events))
		}
	}

	state, err := e.State(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if !state.Innings[0].Completed || state.Match.CurrentInnings != 2 {
		t.Fatalf("first innings not handed over: %+v", state.Match)
	}
	if target := state.ChaseTarget(); target != 7 {
		t.Fatalf("chase target = %d, want 7", target)
	}

	mustExecute(t, e, command.Command{
		Type:          command.TypeStartInnings,
		MatchID:       matchID,
		InningsNumber: 2,
		Payload: command.StartInningsPayload{
			StrikerID:       "bat-11",
			NonStrikerID:    "bat-12",
			OpeningBowlerID: "bwl-11",
		},
	})

	// The chase: two boundaries pass the target and complete the match in
	// the same request batch.
	submitDelivery(t, e, matchID, 2, delivery.Outcome{BatRuns: 4, Extra: delivery.ExtraNone})
	res := submitDelivery(t, e, matchID, 2, delivery.Outcome{BatRuns: 4, Extra: delivery.ExtraNone})
	if len(res.Events) != 3 {
		t.Fatalf("winning ball emitted %d events, want delivery, innings end, match end", len(res.Events))
	}

	state, err = e.State(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if state.Match.Status != match.StatusCompleted {
		t.Fatalf("status = %s, want completed", state.Match.Status)
	}
	result := state.Match.Result
	if result.Outcome != match.ResultWonByWickets || result.WinnerTeamID != "team-b" || result.Margin != 10 {
		t.Errorf("result = %+v", result)
	}

	rec, err := e.store.GetMatch(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read match record: %v", err)
	}
	if rec.Status != match.StatusCompleted || rec.CurrentInnings != 2 {
		t.Errorf("match record = %+v", rec)
	}

	// The completed match accepts nothing further.
	extra, err := e.Execute(context.Background(), command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: 2,
		Payload:       command.SubmitDeliveryPayload{Outcome: delivery.Outcome{BatRuns: 1}},
	})
	if err != nil {
		t.Fatalf("execute after completion: %v", err)
	}
	if extra.Decision.Accepted() {
		t.Fatal("delivery accepted after match completion")
	}
}

func TestExecuteRejectionLeavesLedgerUntouched(t *testing.T) {
	e, _ := newTestEngine(memory.New())
	matchID := setupMatch(t, e, match.DefaultFormat)

	for i := 0; i < 6; i++ {
		submitDelivery(t, e, matchID, 1, delivery.Outcome{Extra: delivery.ExtraNone})
	}
	before := stateJSON(t, e, matchID)
	seqBefore, err := e.store.LatestEventSeq(context.Background(), matchID)
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}

	// Seventh ball of the over: rejected, and nothing about the match moves.
	res, err := e.Execute(context.Background(), command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: 1,
		Payload:       command.SubmitDeliveryPayload{Outcome: delivery.Outcome{BatRuns: 1}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Decision.Accepted() {
		t.Fatal("seventh delivery accepted")
	}
	if res.Decision.Rejections[0].Code != string(apperrors.CodeOverAlreadyComplete) {
		t.Errorf("code = %s, want %s", res.Decision.Rejections[0].Code, apperrors.CodeOverAlreadyComplete)
	}

	seqAfter, err := e.store.LatestEventSeq(context.Background(), matchID)
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if seqAfter != seqBefore {
		t.Errorf("ledger moved: %d -> %d", seqBefore, seqAfter)
	}
	if after := stateJSON(t, e, matchID); after != before {
		t.Error("state changed on a rejected command")
	}
}

func TestUndoRestoresPriorState(t *testing.T) {
	e, _ := newTestEngine(memory.New())
	matchID := setupMatch(t, e, match.DefaultFormat)

	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 2, Extra: delivery.ExtraNone})
	before := stateJSON(t, e, matchID)

	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraWide, ExtraRuns: 1})
	if after := stateJSON(t, e, matchID); after == before {
		t.Fatal("delivery did not change state")
	}

	res, err := e.Undo(context.Background(), matchID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Type != event.TypeDeliveryRecorded {
		t.Fatalf("removed events = %+v", res.Events)
	}
	if restored := stateJSON(t, e, matchID); restored != before {
		t.Error("undo did not restore the prior state")
	}
}

func TestUndoReversesCompletionCascade(t *testing.T) {
	e, _ := newTestEngine(memory.New())
	matchID := setupMatch(t, e, oneOverFormat)

	for i := 0; i < 5; i++ {
		submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone})
	}
	before := stateJSON(t, e, matchID)

	res := submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone})
	if len(res.Events) != 2 {
		t.Fatalf("closing ball emitted %d events, want 2", len(res.Events))
	}

	undone, err := e.Undo(context.Background(), matchID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(undone.Events) != 2 {
		t.Fatalf("undo removed %d events, want the full request batch", len(undone.Events))
	}
	if restored := stateJSON(t, e, matchID); restored != before {
		t.Error("undo did not reopen the innings")
	}
	state, err := e.State(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if state.Match.CurrentInnings != 1 || len(state.Innings) != 1 || state.Innings[0].Completed {
		t.Errorf("innings not reopened: %+v", state.Match)
	}
}

func TestUndoRequiresDelivery(t *testing.T) {
	e, _ := newTestEngine(memory.New())

	if _, err := e.Undo(context.Background(), "missing"); !apperrors.IsCode(err, apperrors.CodeNothingToUndo) {
		t.Errorf("empty ledger undo error = %v, want %s", err, apperrors.CodeNothingToUndo)
	}

	matchID := setupMatch(t, e, match.DefaultFormat)
	if _, err := e.Undo(context.Background(), matchID); !apperrors.IsCode(err, apperrors.CodeNothingToUndo) {
		t.Errorf("lifecycle undo error = %v, want %s", err, apperrors.CodeNothingToUndo)
	}

	// A delivery makes the tail undoable exactly once.
	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone})
	if _, err := e.Undo(context.Background(), matchID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, err := e.Undo(context.Background(), matchID); !apperrors.IsCode(err, apperrors.CodeNothingToUndo) {
		t.Errorf("second undo error = %v, want %s", err, apperrors.CodeNothingToUndo)
	}
}

func TestVerifyDetectsDivergence(t *testing.T) {
	e, _ := newTestEngine(memory.New())
	matchID := setupMatch(t, e, match.DefaultFormat)
	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 4, Extra: delivery.ExtraNone})

	if err := e.Verify(context.Background(), matchID); err != nil {
		t.Fatalf("verify clean state: %v", err)
	}

	// Corrupt the cached snapshot behind the engine's back.
	state, lastSeq, err := e.checkpoints.GetState(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	state.Innings[0].Runs++
	if err := e.checkpoints.SaveState(context.Background(), matchID, lastSeq, state); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	if err := e.Verify(context.Background(), matchID); !apperrors.IsCode(err, apperrors.CodeStateDiverged) {
		t.Fatalf("verify error = %v, want %s", err, apperrors.CodeStateDiverged)
	}

	// The match is quarantined: no further commands are served.
	if _, err := e.Execute(context.Background(), command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: 1,
		Payload:       command.SubmitDeliveryPayload{Outcome: delivery.Outcome{BatRuns: 1}},
	}); !apperrors.IsCode(err, apperrors.CodeStateDiverged) {
		t.Errorf("execute on quarantined match error = %v, want %s", err, apperrors.CodeStateDiverged)
	}
}

func TestStateRebuildsFromLedgerOnColdCache(t *testing.T) {
	store := memory.New()
	e, _ := newTestEngine(store)
	matchID := setupMatch(t, e, match.DefaultFormat)
	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 4, Extra: delivery.ExtraNone})
	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNoBall})
	want := stateJSON(t, e, matchID)

	// A second engine over the same ledger starts with an empty cache and
	// must arrive at the identical aggregate.
	restarted, _ := newTestEngine(store)
	if got := stateJSON(t, restarted, matchID); got != want {
		t.Error("replayed state differs from incremental state")
	}
}

func TestWicketReplacementFlow(t *testing.T) {
	e, _ := newTestEngine(memory.New())
	matchID := setupMatch(t, e, match.DefaultFormat)

	submitDelivery(t, e, matchID, 1, delivery.Outcome{
		Dismissal: delivery.DismissalBowled,
		Extra:     delivery.ExtraNone,
	})

	// No delivery is accepted while the crease has a vacancy.
	blocked, err := e.Execute(context.Background(), command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: 1,
		Payload:       command.SubmitDeliveryPayload{Outcome: delivery.Outcome{BatRuns: 1}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if blocked.Decision.Accepted() {
		t.Fatal("delivery accepted while awaiting replacement")
	}
	if blocked.Decision.Rejections[0].Code != string(apperrors.CodeAwaitingReplacement) {
		t.Errorf("code = %s, want %s", blocked.Decision.Rejections[0].Code, apperrors.CodeAwaitingReplacement)
	}

	mustExecute(t, e, command.Command{
		Type:          command.TypeSelectReplacement,
		MatchID:       matchID,
		InningsNumber: 1,
		Payload:       command.SelectReplacementPayload{PlayerID: "bat-3"},
	})
	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone})

	state, err := e.State(context.Background(), matchID)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if state.Innings[0].Wickets != 1 || state.Innings[0].AwaitingReplacement {
		t.Errorf("innings = wickets %d awaiting %v", state.Innings[0].Wickets, state.Innings[0].AwaitingReplacement)
	}
	if !state.Innings[0].HasBatted("bat-3") {
		t.Error("replacement batter missing from the batting card")
	}
}

func TestNotifierReceivesAppliedAndUndone(t *testing.T) {
	e, notifier := newTestEngine(memory.New())
	matchID := setupMatch(t, e, match.DefaultFormat)
	submitDelivery(t, e, matchID, 1, delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone})
	if _, err := e.Undo(context.Background(), matchID); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if len(notifier.notes) != 5 {
		t.Fatalf("notifications = %d, want 5", len(notifier.notes))
	}
	applied := notifier.notes[3]
	if applied.Kind != KindApplied || applied.MatchID != matchID || len(applied.Events) != 1 {
		t.Errorf("applied notification = %+v", applied)
	}
	undone := notifier.notes[4]
	if undone.Kind != KindUndone || len(undone.Events) != 1 {
		t.Errorf("undone notification = %+v", undone)
	}
	if undone.Events[0].RequestID != applied.Events[0].RequestID {
		t.Error("undo removed a different request batch")
	}
}

func TestExecuteFillsMatchAndRequestIDs(t *testing.T) {
	e, _ := newTestEngine(memory.New())

	res := mustExecute(t, e, command.Command{
		Type: command.TypeCreateMatch,
		Payload: command.CreateMatchPayload{
			TeamA: match.Team{ID: "team-a"},
			TeamB: match.Team{ID: "team-b"},
		},
	})
	if res.Command.MatchID == "" {
		t.Error("match id not generated")
	}
	if res.Command.RequestID == "" {
		t.Error("request id not generated")
	}

	if _, err := e.Execute(context.Background(), command.Command{Type: "bogus", MatchID: "m"}); !apperrors.IsCode(err, apperrors.CodeInvalidCommand) {
		t.Errorf("bogus command error = %v, want %s", err, apperrors.CodeInvalidCommand)
	}
}

// A caller-supplied request id scopes the undo batch, so reusing one across
// two deliveries must be rejected rather than letting one undo remove both.
func TestExecuteRejectsReusedRequestID(t *testing.T) {
	store := memory.New()
	e, _ := newTestEngine(store)
	matchID := setupMatch(t, e, match.DefaultFormat)

	before := stateJSON(t, e, matchID)
	mustExecute(t, e, command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: 1,
		RequestID:     "client-req-1",
		Payload:       command.SubmitDeliveryPayload{Outcome: delivery.Outcome{BatRuns: 1, Extra: delivery.ExtraNone}},
	})

	_, err := e.Execute(context.Background(), command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       matchID,
		InningsNumber: 1,
		RequestID:     "client-req-1",
		Payload:       command.SubmitDeliveryPayload{Outcome: delivery.Outcome{BatRuns: 2, Extra: delivery.ExtraNone}},
	})
	if !apperrors.IsCode(err, apperrors.CodeDuplicateRequest) {
		t.Fatalf("reused request id error = %v, want %s", err, apperrors.CodeDuplicateRequest)
	}

	latest, err := store.LatestEventSeq(context.Background(), matchID)
	if err != nil {
		t.Fatalf("latest event seq: %v", err)
	}
	if latest != 4 {
		t.Fatalf("latest seq = %d, want 4", latest)
	}

	res, err := e.Undo(context.Background(), matchID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].RequestID != "client-req-1" {
		t.Fatalf("undo removed %+v, want the single delivery batch", res.Events)
	}
	if got := stateJSON(t, e, matchID); got != before {
		t.Error("undo did not restore the pre-delivery state")
	}
}
