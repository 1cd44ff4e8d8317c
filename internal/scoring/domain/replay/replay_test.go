package replay

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

type sliceStore struct {
	events []event.Event
}

func (s *sliceStore) ListEvents(_ context.Context, matchID string, afterSeq uint64, limit int) ([]event.Event, error) {
	var out []event.Event
	for _, evt := range s.events {
		if evt.MatchID != matchID || evt.Seq <= afterSeq {
			continue
		}
		out = append(out, evt)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type mapCheckpoints struct {
	saved map[string]Checkpoint
}

func (m *mapCheckpoints) Get(_ context.Context, matchID string) (Checkpoint, error) {
	checkpoint, ok := m.saved[matchID]
	if !ok {
		return Checkpoint{}, ErrCheckpointNotFound
	}
	return checkpoint, nil
}

func (m *mapCheckpoints) Save(_ context.Context, checkpoint Checkpoint) error {
	if m.saved == nil {
		m.saved = map[string]Checkpoint{}
	}
	m.saved[checkpoint.MatchID] = checkpoint
	return nil
}

func lifecycleEvents(t *testing.T) []event.Event {
	t.Helper()
	created, err := event.EncodePayload(event.MatchCreatedPayload{
		TeamA:  match.Team{ID: "team-a"},
		TeamB:  match.Team{ID: "team-b"},
		Format: match.DefaultFormat,
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	toss, err := event.EncodePayload(event.TossRecordedPayload{
		WinnerTeamID: "team-a",
		Decision:     match.TossDecisionBat,
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	now := time.Now()
	return []event.Event{
		{MatchID: "match-1", Seq: 1, Timestamp: now, Type: event.TypeMatchCreated, PayloadJSON: created},
		{MatchID: "match-1", Seq: 2, Timestamp: now, Type: event.TypeTossRecorded, PayloadJSON: toss},
	}
}

func TestReplayFoldsInOrder(t *testing.T) {
	store := &sliceStore{events: lifecycleEvents(t)}
	checkpoints := &mapCheckpoints{}
	var folder aggregate.Folder

	result, err := Replay(context.Background(), store, checkpoints, &folder, "match-1", &aggregate.State{}, Options{PageSize: 1})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Applied != 2 || result.LastSeq != 2 {
		t.Errorf("applied=%d lastSeq=%d, want 2 and 2", result.Applied, result.LastSeq)
	}
	if result.State.Match.Status != match.StatusTossDone {
		t.Errorf("Status = %q, want %q", result.State.Match.Status, match.StatusTossDone)
	}
	if checkpoints.saved["match-1"].LastSeq != 2 {
		t.Errorf("checkpoint LastSeq = %d, want 2", checkpoints.saved["match-1"].LastSeq)
	}
}

func TestReplayResumesFromCheckpoint(t *testing.T) {
	events := lifecycleEvents(t)
	store := &sliceStore{events: events}
	checkpoints := &mapCheckpoints{saved: map[string]Checkpoint{
		"match-1": {MatchID: "match-1", LastSeq: 1},
	}}
	var folder aggregate.Folder

	// The state passed in must already reflect seq 1 for resume to be valid.
	state := &aggregate.State{}
	if err := folder.Fold(state, events[0]); err != nil {
		t.Fatalf("seed fold: %v", err)
	}

	result, err := Replay(context.Background(), store, checkpoints, &folder, "match-1", state, Options{})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("applied = %d, want only the event after the checkpoint", result.Applied)
	}
	if result.State.Match.Status != match.StatusTossDone {
		t.Errorf("Status = %q, want %q", result.State.Match.Status, match.StatusTossDone)
	}
}

func TestReplaySequenceGapFails(t *testing.T) {
	events := lifecycleEvents(t)
	events[1].Seq = 5
	store := &sliceStore{events: events}
	var folder aggregate.Folder

	_, err := Replay(context.Background(), store, &mapCheckpoints{}, &folder, "match-1", &aggregate.State{}, Options{})
	if err == nil || !strings.Contains(err.Error(), "sequence gap") {
		t.Fatalf("Replay() error = %v, want sequence gap", err)
	}
}

func TestReplayUntilSeqStopsEarly(t *testing.T) {
	store := &sliceStore{events: lifecycleEvents(t)}
	var folder aggregate.Folder

	result, err := Replay(context.Background(), store, &mapCheckpoints{}, &folder, "match-1", &aggregate.State{}, Options{UntilSeq: 1})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Applied != 1 || result.LastSeq != 1 {
		t.Errorf("applied=%d lastSeq=%d, want 1 and 1", result.Applied, result.LastSeq)
	}
	if result.State.Match.Status != match.StatusSetup {
		t.Errorf("Status = %q, want %q", result.State.Match.Status, match.StatusSetup)
	}
}

func TestReplayRequiresDependencies(t *testing.T) {
	var folder aggregate.Folder
	store := &sliceStore{}

	if _, err := Replay(context.Background(), nil, &mapCheckpoints{}, &folder, "match-1", nil, Options{}); err != ErrEventStoreRequired {
		t.Errorf("missing store error = %v", err)
	}
	if _, err := Replay(context.Background(), store, nil, &folder, "match-1", nil, Options{}); err != ErrCheckpointStoreRequired {
		t.Errorf("missing checkpoints error = %v", err)
	}
	if _, err := Replay(context.Background(), store, &mapCheckpoints{}, nil, "match-1", nil, Options{}); err != ErrFolderRequired {
		t.Errorf("missing folder error = %v", err)
	}
	if _, err := Replay(context.Background(), store, &mapCheckpoints{}, &folder, "  ", nil, Options{}); err != ErrMatchIDRequired {
		t.Errorf("missing match id error = %v", err)
	}
}
