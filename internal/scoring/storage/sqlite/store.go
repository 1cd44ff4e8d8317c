// Package sqlite provides a SQLite-backed scoring storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/creaselive/crease/internal/platform/storage/sqlitemigrate"
	"github.com/creaselive/crease/internal/scoring/domain/match"
	"github.com/creaselive/crease/internal/scoring/storage"
	"github.com/creaselive/crease/internal/scoring/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists match state and the event ledger in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite scoring store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutMatch inserts or replaces one match record.
func (s *Store) PutMatch(ctx context.Context, rec storage.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return fmt.Errorf("match id is required")
	}
	createdAt := rec.CreatedAt.UTC()
	updatedAt := rec.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO matches (
		   id, team_a_id, team_a_name, team_b_id, team_b_name,
		   balls_per_over, overs_per_innings, players_per_side,
		   status, current_innings, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   status = excluded.status,
		   current_innings = excluded.current_innings,
		   updated_at = excluded.updated_at`,
		id,
		rec.TeamAID,
		rec.TeamAName,
		rec.TeamBID,
		rec.TeamBName,
		rec.Format.BallsPerOver,
		rec.Format.OversPerInnings,
		rec.Format.PlayersPerSide,
		string(rec.Status),
		rec.CurrentInnings,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put match: %w", err)
	}
	return nil
}

// GetMatch returns one match record by id.
func (s *Store) GetMatch(ctx context.Context, id string) (storage.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MatchRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.MatchRecord{}, fmt.Errorf("match id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, team_a_id, team_a_name, team_b_id, team_b_name,
		        balls_per_over, overs_per_innings, players_per_side,
		        status, current_innings, created_at, updated_at
		   FROM matches
		  WHERE id = ?`,
		id,
	)
	rec, err := scanMatch(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MatchRecord{}, storage.ErrNotFound
		}
		return storage.MatchRecord{}, fmt.Errorf("get match: %w", err)
	}
	return rec, nil
}

// ListMatches returns one page of match records ordered by id.
func (s *Store) ListMatches(ctx context.Context, pageSize int, pageToken string) (storage.MatchPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MatchPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	pageToken = strings.TrimSpace(pageToken)

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, team_a_id, team_a_name, team_b_id, team_b_name,
			        balls_per_over, overs_per_innings, players_per_side,
			        status, current_innings, created_at, updated_at
			   FROM matches
			  ORDER BY id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, team_a_id, team_a_name, team_b_id, team_b_name,
			        balls_per_over, overs_per_innings, players_per_side,
			        status, current_innings, created_at, updated_at
			   FROM matches
			  WHERE id > ?
			  ORDER BY id ASC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.MatchPage{}, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	page := storage.MatchPage{Matches: make([]storage.MatchRecord, 0, pageSize)}
	for rows.Next() {
		rec, err := scanMatch(rows.Scan)
		if err != nil {
			return storage.MatchPage{}, fmt.Errorf("list matches: %w", err)
		}
		page.Matches = append(page.Matches, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.MatchPage{}, fmt.Errorf("list matches: %w", err)
	}
	if len(page.Matches) > pageSize {
		page.NextPageToken = page.Matches[pageSize-1].ID
		page.Matches = page.Matches[:pageSize]
	}
	return page, nil
}

func scanMatch(scan func(dest ...any) error) (storage.MatchRecord, error) {
	var rec storage.MatchRecord
	var status string
	var createdAt, updatedAt int64
	err := scan(
		&rec.ID,
		&rec.TeamAID,
		&rec.TeamAName,
		&rec.TeamBID,
		&rec.TeamBName,
		&rec.Format.BallsPerOver,
		&rec.Format.OversPerInnings,
		&rec.Format.PlayersPerSide,
		&status,
		&rec.CurrentInnings,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.MatchRecord{}, err
	}
	rec.Status = match.Status(status)
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

var _ storage.Store = (*Store)(nil)
