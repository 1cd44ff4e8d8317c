// Package memory provides an in-memory Store implementation for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/storage"
)

// Store keeps ledgers and match records in process memory.
type Store struct {
	mu      sync.Mutex
	events  map[string][]event.Event
	matches map[string]storage.MatchRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		events:  make(map[string][]event.Event),
		matches: make(map[string]storage.MatchRecord),
	}
}

// AppendEvent assigns the next sequence number and appends the event.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	evt, err := event.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.events[evt.MatchID]
	evt.Seq = uint64(len(ledger)) + 1
	payload := make([]byte, len(evt.PayloadJSON))
	copy(payload, evt.PayloadJSON)
	evt.PayloadJSON = payload
	s.events[evt.MatchID] = append(ledger, evt)
	return evt, nil
}

// ListEvents returns events strictly after afterSeq in sequence order.
func (s *Store) ListEvents(ctx context.Context, matchID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []event.Event
	for _, evt := range s.events[matchID] {
		if evt.Seq <= afterSeq {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListEventsByRequest returns the events appended under one request id.
func (s *Store) ListEventsByRequest(ctx context.Context, matchID, requestID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []event.Event
	for _, evt := range s.events[matchID] {
		if evt.RequestID == requestID {
			out = append(out, evt)
		}
	}
	return out, nil
}

// LatestEventSeq returns the latest sequence number, 0 for an empty ledger.
func (s *Store) LatestEventSeq(ctx context.Context, matchID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.events[matchID]
	if len(ledger) == 0 {
		return 0, nil
	}
	return ledger[len(ledger)-1].Seq, nil
}

// RemoveTail removes every event with seq >= fromSeq.
func (s *Store) RemoveTail(ctx context.Context, matchID string, fromSeq uint64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.events[matchID]
	kept := ledger[:0]
	removed := 0
	for _, evt := range ledger {
		if evt.Seq >= fromSeq {
			removed++
			continue
		}
		kept = append(kept, evt)
	}
	s.events[matchID] = kept
	return removed, nil
}

// PutMatch stores a match record.
func (s *Store) PutMatch(ctx context.Context, rec storage.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches[rec.ID] = rec
	return nil
}

// GetMatch retrieves a match record by id.
func (s *Store) GetMatch(ctx context.Context, id string) (storage.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.matches[id]
	if !ok {
		return storage.MatchRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

// ListMatches returns a page of match records ordered by id.
func (s *Store) ListMatches(ctx context.Context, pageSize int, pageToken string) (storage.MatchPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchPage{}, err
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.matches))
	for id := range s.matches {
		if pageToken != "" && id <= pageToken {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	page := storage.MatchPage{}
	for _, id := range ids {
		if len(page.Matches) == pageSize {
			page.NextPageToken = page.Matches[len(page.Matches)-1].ID
			break
		}
		page.Matches = append(page.Matches, s.matches[id])
	}
	return page, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
