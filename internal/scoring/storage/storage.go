// Package storage defines the persistence boundary of the scoring engine.
// The event store is the source of truth: ordered append with read-all per
// match, plus the single trailing removal that undo requires. Everything
// else is a projection.
package storage

import (
	"context"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/match"
)

// ErrNotFound indicates a requested persistence record is missing. Callers
// use this to differentiate legitimate "no such match" states from transport
// or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// MatchRecord captures the match-level metadata that list and detail views
// read without replaying the ledger.
type MatchRecord struct {
	ID             string       `json:"id"`
	TeamAID        string       `json:"team_a_id"`
	TeamAName      string       `json:"team_a_name"`
	TeamBID        string       `json:"team_b_id"`
	TeamBName      string       `json:"team_b_name"`
	Format         match.Format `json:"format"`
	Status         match.Status `json:"status"`
	CurrentInnings int          `json:"current_innings"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// MatchPage describes a page of match records.
type MatchPage struct {
	Matches       []MatchRecord `json:"matches"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// EventStore owns the per-match ledger that drives folds, replay, and undo.
type EventStore interface {
	// AppendEvent atomically appends an event and returns it with its
	// sequence number assigned.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns events ordered by sequence ascending, strictly
	// after afterSeq, up to limit.
	ListEvents(ctx context.Context, matchID string, afterSeq uint64, limit int) ([]event.Event, error)
	// ListEventsByRequest returns the events appended under one request id,
	// ordered by sequence ascending.
	ListEventsByRequest(ctx context.Context, matchID, requestID string) ([]event.Event, error)
	// LatestEventSeq returns the latest sequence number for a match, 0 when
	// no events exist.
	LatestEventSeq(ctx context.Context, matchID string) (uint64, error)
	// RemoveTail removes every event with seq >= fromSeq and returns how
	// many were removed. This is the undo primitive; it must never leave a
	// gap mid-ledger.
	RemoveTail(ctx context.Context, matchID string, fromSeq uint64) (int, error)
}

// MatchStore owns the match-level projection used by listing endpoints.
type MatchStore interface {
	PutMatch(ctx context.Context, rec MatchRecord) error
	GetMatch(ctx context.Context, id string) (MatchRecord, error)
	// ListMatches returns a page of match records starting after the page token.
	ListMatches(ctx context.Context, pageSize int, pageToken string) (MatchPage, error)
}

// Store is the composite persistence interface the scoring service wires.
type Store interface {
	EventStore
	MatchStore
	Close() error
}
