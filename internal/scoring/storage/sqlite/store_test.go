package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/match"
	"github.com/creaselive/crease/internal/scoring/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "scoring.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testEvent(matchID, requestID string, typ event.Type) event.Event {
	return event.Event{
		MatchID:     matchID,
		Timestamp:   time.Date(2026, time.March, 8, 14, 30, 0, 0, time.UTC),
		Type:        typ,
		RequestID:   requestID,
		PayloadJSON: []byte(`{"k":"v"}`),
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestAppendEventAssignsSequences(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	first, err := store.AppendEvent(ctx, testEvent("match-1", "req-1", event.TypeMatchCreated))
	if err != nil {
		t.Fatalf("append event: %v", err)
	}
	second, err := store.AppendEvent(ctx, testEvent("match-1", "req-2", event.TypeTossRecorded))
	if err != nil {
		t.Fatalf("append event: %v", err)
	}
	other, err := store.AppendEvent(ctx, testEvent("match-2", "req-1", event.TypeMatchCreated))
	if err != nil {
		t.Fatalf("append event: %v", err)
	}

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("seqs = %d, %d, want 1, 2", first.Seq, second.Seq)
	}
	if other.Seq != 1 {
		t.Errorf("other match seq = %d, want independent 1", other.Seq)
	}

	latest, err := store.LatestEventSeq(ctx, "match-1")
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if latest != 2 {
		t.Errorf("latest = %d, want 2", latest)
	}
}

func TestListEventsOrderAndPaging(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.AppendEvent(ctx, testEvent("match-1", "req-1", event.TypeDeliveryRecorded)); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	events, err := store.ListEvents(ctx, "match-1", 2, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || events[0].Seq != 3 || events[1].Seq != 4 {
		t.Fatalf("page = %+v, want seqs 3 and 4", events)
	}
	if events[0].Timestamp.IsZero() || string(events[0].PayloadJSON) != `{"k":"v"}` {
		t.Errorf("event fields not round-tripped: %+v", events[0])
	}
}

func TestListEventsByRequest(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.AppendEvent(ctx, testEvent("match-1", "req-1", event.TypeMatchCreated)); err != nil {
		t.Fatalf("append event: %v", err)
	}
	if _, err := store.AppendEvent(ctx, testEvent("match-1", "req-2", event.TypeDeliveryRecorded)); err != nil {
		t.Fatalf("append event: %v", err)
	}
	if _, err := store.AppendEvent(ctx, testEvent("match-1", "req-2", event.TypeInningsEnded)); err != nil {
		t.Fatalf("append event: %v", err)
	}

	batch, err := store.ListEventsByRequest(ctx, "match-1", "req-2")
	if err != nil {
		t.Fatalf("list by request: %v", err)
	}
	if len(batch) != 2 || batch[0].Seq != 2 || batch[1].Seq != 3 {
		t.Fatalf("batch = %+v, want seqs 2 and 3", batch)
	}
}

func TestRemoveTail(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := store.AppendEvent(ctx, testEvent("match-1", "req-1", event.TypeDeliveryRecorded)); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	removed, err := store.RemoveTail(ctx, "match-1", 3)
	if err != nil {
		t.Fatalf("remove tail: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	latest, err := store.LatestEventSeq(ctx, "match-1")
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if latest != 2 {
		t.Errorf("latest after removal = %d, want 2", latest)
	}

	// The next append reuses the removed sequence range.
	evt, err := store.AppendEvent(ctx, testEvent("match-1", "req-3", event.TypeDeliveryRecorded))
	if err != nil {
		t.Fatalf("append after removal: %v", err)
	}
	if evt.Seq != 3 {
		t.Errorf("seq after removal = %d, want 3", evt.Seq)
	}
}

func TestMatchRecordRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 8, 14, 30, 0, 0, time.UTC)

	rec := storage.MatchRecord{
		ID:             "match-1",
		TeamAID:        "team-a",
		TeamAName:      "Avon",
		TeamBID:        "team-b",
		TeamBName:      "Barchester",
		Format:         match.DefaultFormat,
		Status:         match.StatusSetup,
		CurrentInnings: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.PutMatch(ctx, rec); err != nil {
		t.Fatalf("put match: %v", err)
	}

	got, err := store.GetMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) || !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, rec.CreatedAt, rec.UpdatedAt)
	}
	got.CreatedAt, got.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	if got != rec {
		t.Errorf("GetMatch() = %+v, want %+v", got, rec)
	}

	rec.Status = match.StatusInProgress
	rec.CurrentInnings = 1
	rec.UpdatedAt = now.Add(time.Minute)
	if err := store.PutMatch(ctx, rec); err != nil {
		t.Fatalf("update match: %v", err)
	}
	got, err = store.GetMatch(ctx, "match-1")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.Status != match.StatusInProgress || got.CurrentInnings != 1 {
		t.Errorf("updated record = %+v", got)
	}

	if _, err := store.GetMatch(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetMatch(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListMatchesPaging(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, id := range []string{"match-1", "match-2", "match-3"} {
		if err := store.PutMatch(ctx, storage.MatchRecord{ID: id, Status: match.StatusSetup}); err != nil {
			t.Fatalf("put match: %v", err)
		}
	}

	page, err := store.ListMatches(ctx, 2, "")
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(page.Matches) != 2 || page.NextPageToken != "match-2" {
		t.Fatalf("page = %+v", page)
	}

	rest, err := store.ListMatches(ctx, 2, page.NextPageToken)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(rest.Matches) != 1 || rest.Matches[0].ID != "match-3" || rest.NextPageToken != "" {
		t.Fatalf("rest = %+v", rest)
	}
}
