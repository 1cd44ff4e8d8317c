// Package checkpoint provides replay checkpoint stores. The memory store
// also keeps per-match state snapshots so undo can restart a replay from the
// snapshot preceding the removed events instead of from empty.
package checkpoint

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/replay"
)

// ErrMatchIDRequired indicates a missing match id.
var ErrMatchIDRequired = errors.New("match id is required")

// Memory stores checkpoints and state snapshots in memory.
type Memory struct {
	mu          sync.Mutex
	checkpoints map[string]replay.Checkpoint
	states      map[string]aggregate.State
}

// NewMemory creates a new in-memory checkpoint store.
func NewMemory() *Memory {
	return &Memory{
		checkpoints: make(map[string]replay.Checkpoint),
		states:      make(map[string]aggregate.State),
	}
}

// Get retrieves a checkpoint by match id.
func (m *Memory) Get(ctx context.Context, matchID string) (replay.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return replay.Checkpoint{}, err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return replay.Checkpoint{}, ErrMatchIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint, ok := m.checkpoints[matchID]
	if !ok {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save persists a checkpoint.
func (m *Memory) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	matchID := strings.TrimSpace(checkpoint.MatchID)
	if matchID == "" {
		return ErrMatchIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint.MatchID = matchID
	m.checkpoints[matchID] = checkpoint
	return nil
}

// GetState retrieves a state snapshot and its sequence. The returned state
// is a clone; callers may mutate it freely.
func (m *Memory) GetState(ctx context.Context, matchID string) (*aggregate.State, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, 0, ErrMatchIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.states[matchID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}
	checkpoint, ok := m.checkpoints[matchID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}

	cloned := snapshot.Clone()
	return &cloned, checkpoint.LastSeq, nil
}

// SaveState persists a state snapshot together with its checkpoint.
func (m *Memory) SaveState(ctx context.Context, matchID string, lastSeq uint64, state *aggregate.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return ErrMatchIDRequired
	}
	if state == nil {
		return errors.New("state is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[matchID] = state.Clone()
	m.checkpoints[matchID] = replay.Checkpoint{
		MatchID:   matchID,
		LastSeq:   lastSeq,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// Drop discards the checkpoint and snapshot for a match, forcing the next
// replay to start from empty. Undo uses this before rebuilding.
func (m *Memory) Drop(ctx context.Context, matchID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return ErrMatchIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkpoints, matchID)
	delete(m.states, matchID)
	return nil
}
