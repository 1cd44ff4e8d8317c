package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/creaselive/crease/internal/scoring/domain/event"
)

// AppendEvent atomically assigns the next per-match sequence number and
// inserts the event. The MAX(seq)+1 read and the insert share one
// transaction so concurrent appends cannot race a sequence.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	evt, err := event.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latest sql.NullInt64
	row := tx.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM match_events WHERE match_id = ?`, evt.MatchID)
	if err := row.Scan(&latest); err != nil {
		return event.Event{}, fmt.Errorf("read latest seq: %w", err)
	}
	evt.Seq = uint64(latest.Int64) + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_events (
		   match_id, seq, ts, type, innings_number, request_id, actor_id, payload_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.MatchID,
		evt.Seq,
		toMillis(evt.Timestamp),
		string(evt.Type),
		evt.InningsNumber,
		evt.RequestID,
		evt.ActorID,
		evt.PayloadJSON,
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit append: %w", err)
	}
	return evt, nil
}

// ListEvents returns events ordered by sequence ascending, strictly after
// afterSeq.
func (s *Store) ListEvents(ctx context.Context, matchID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}
	if limit <= 0 {
		limit = 200
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT match_id, seq, ts, type, innings_number, request_id, actor_id, payload_json
		   FROM match_events
		  WHERE match_id = ? AND seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		matchID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListEventsByRequest returns the events appended under one request id.
func (s *Store) ListEventsByRequest(ctx context.Context, matchID, requestID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT match_id, seq, ts, type, innings_number, request_id, actor_id, payload_json
		   FROM match_events
		  WHERE match_id = ? AND request_id = ?
		  ORDER BY seq ASC`,
		matchID, requestID)
	if err != nil {
		return nil, fmt.Errorf("list events by request: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// LatestEventSeq returns the latest sequence number for a match, 0 when the
// ledger is empty.
func (s *Store) LatestEventSeq(ctx context.Context, matchID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var latest sql.NullInt64
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM match_events WHERE match_id = ?`, matchID)
	if err := row.Scan(&latest); err != nil {
		return 0, fmt.Errorf("latest event seq: %w", err)
	}
	return uint64(latest.Int64), nil
}

// RemoveTail removes every event with seq >= fromSeq for a match.
func (s *Store) RemoveTail(ctx context.Context, matchID string, fromSeq uint64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM match_events WHERE match_id = ? AND seq >= ?`,
		matchID, fromSeq)
	if err != nil {
		return 0, fmt.Errorf("remove tail: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove tail: %w", err)
	}
	return int(removed), nil
}

func collectEvents(rows *sql.Rows) ([]event.Event, error) {
	var out []event.Event
	for rows.Next() {
		var evt event.Event
		var ts int64
		var typ string
		if err := rows.Scan(
			&evt.MatchID,
			&evt.Seq,
			&ts,
			&typ,
			&evt.InningsNumber,
			&evt.RequestID,
			&evt.ActorID,
			&evt.PayloadJSON,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Timestamp = fromMillis(ts)
		evt.Type = event.Type(typ)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return out, nil
}
