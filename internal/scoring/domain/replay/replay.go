// Package replay rebuilds aggregate state by folding the match ledger in
// order. It is the correctness oracle for incremental updates: any state the
// engine maintains must equal a replay from empty, and undo is implemented
// as replay of the remaining ledger.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrCheckpointStoreRequired indicates a missing checkpoint store.
	ErrCheckpointStoreRequired = errors.New("checkpoint store is required")
	// ErrFolderRequired indicates a missing folder.
	ErrFolderRequired = errors.New("folder is required")
	// ErrMatchIDRequired indicates a missing match id.
	ErrMatchIDRequired = errors.New("match id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// EventStore lists ledger events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, matchID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// CheckpointStore manages replay checkpoints.
type CheckpointStore interface {
	Get(ctx context.Context, matchID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// Checkpoint captures the last applied sequence for a match.
type Checkpoint struct {
	MatchID   string
	LastSeq   uint64
	UpdatedAt time.Time
}

// Options configures replay behavior.
type Options struct {
	AfterSeq uint64
	UntilSeq uint64
	PageSize int
}

// Result captures replay outcomes.
type Result struct {
	State   *aggregate.State
	LastSeq uint64
	Applied int
}

// Replay folds events in order into state and updates the checkpoint after
// each apply. A sequence gap in the ledger aborts the replay: the ledger is
// the source of truth and a gap means it can no longer be trusted.
func Replay(ctx context.Context, store EventStore, checkpoints CheckpointStore, folder *aggregate.Folder, matchID string, state *aggregate.State, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	if checkpoints == nil {
		return Result{}, ErrCheckpointStoreRequired
	}
	if folder == nil {
		return Result{}, ErrFolderRequired
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return Result{}, ErrMatchIDRequired
	}
	if state == nil {
		state = &aggregate.State{}
	}

	checkpointSeq := uint64(0)
	checkpoint, err := checkpoints.Get(ctx, matchID)
	if err != nil {
		if !errors.Is(err, ErrCheckpointNotFound) {
			return Result{}, err
		}
	} else {
		checkpointSeq = checkpoint.LastSeq
	}

	lastSeq := options.AfterSeq
	if checkpointSeq > lastSeq {
		lastSeq = checkpointSeq
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: state, LastSeq: lastSeq}
	for {
		events, err := store.ListEvents(ctx, matchID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq)
			}
			if err := folder.Fold(result.State, evt); err != nil {
				return result, err
			}
			result.LastSeq = evt.Seq
			result.Applied++
			if err := checkpoints.Save(ctx, Checkpoint{MatchID: matchID, LastSeq: result.LastSeq, UpdatedAt: time.Now().UTC()}); err != nil {
				return result, err
			}
		}
	}
}
