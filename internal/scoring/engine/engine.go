// Package engine orchestrates command execution against the ball ledger.
// It serializes commands per match, appends accepted events, maintains the
// incremental aggregate snapshot, and implements single-step undo as a
// trailing removal plus full replay. Replay of the ledger is the oracle:
// whenever the incremental snapshot and a replay disagree, the match is
// quarantined rather than served from a state that can no longer be trusted.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/platform/id"
	"github.com/creaselive/crease/internal/scoring/domain/aggregate"
	"github.com/creaselive/crease/internal/scoring/domain/checkpoint"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/replay"
	"github.com/creaselive/crease/internal/scoring/domain/rules"
	"github.com/creaselive/crease/internal/scoring/storage"
)

// Notification describes a ledger change for downstream consumers (live
// score feeds, projections). Undo notifications carry the removed events.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	MatchID   string           `json:"match_id"`
	RequestID string           `json:"request_id"`
	Events    []event.Event    `json:"events"`
	State     aggregate.State  `json:"state"`
}

// NotificationKind distinguishes appends from undo removals.
type NotificationKind string

const (
	// KindApplied marks events appended to the ledger.
	KindApplied NotificationKind = "applied"
	// KindUndone marks events removed from the ledger tail.
	KindUndone NotificationKind = "undone"
)

// Notifier receives a notification after each successful mutation. The
// engine treats delivery as best effort; implementations own their retries.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Result is the outcome of executing one command.
type Result struct {
	// Command is the normalized command, with any ids the engine filled in.
	Command command.Command
	// Decision carries the rejections when the command was declined.
	Decision command.Decision
	// Events are the appended events with sequence numbers assigned; for
	// Undo they are the removed events.
	Events []event.Event
	// State is a snapshot of the aggregate after the command.
	State *aggregate.State
}

// Engine executes scoring commands for any number of matches.
type Engine struct {
	store       storage.Store
	checkpoints *checkpoint.Memory
	decider     *rules.Decider
	folder      aggregate.Folder
	notifier    Notifier

	clock func() time.Time
	newID func() string

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	poisoned map[string]string
}

// New creates an engine over the given store. A nil notifier disables
// notifications.
func New(store storage.Store, notifier Notifier) *Engine {
	return &Engine{
		store:       store,
		checkpoints: checkpoint.NewMemory(),
		decider:     rules.NewDecider(rules.DefaultShortRunPolicy),
		notifier:    notifier,
		clock:       time.Now,
		newID:       id.New,
		locks:       make(map[string]*sync.Mutex),
		poisoned:    make(map[string]string),
	}
}

// lockFor returns the per-match mutex, creating it on first use. Commands
// for different matches never contend.
func (e *Engine) lockFor(matchID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[matchID] = lock
	}
	return lock
}

func (e *Engine) quarantined(matchID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if detail, ok := e.poisoned[matchID]; ok {
		return apperrors.WithMetadata(apperrors.CodeStateDiverged,
			"match state diverged from ledger replay; scoring is suspended",
			map[string]string{"detail": detail})
	}
	return nil
}

func (e *Engine) quarantine(matchID, detail string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.poisoned[matchID] = detail
}

// Execute validates, decides, and applies one command. A decision with
// rejections is a successful execution: the rejection travels in the result
// and nothing is appended.
func (e *Engine) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if cmd.Type == command.TypeCreateMatch && cmd.MatchID == "" {
		cmd.MatchID = id.NewPrefixed("match")
	}
	cmd, err := command.ValidateForDecision(cmd)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidCommand, err.Error(), err)
	}
	clientRequestID := cmd.RequestID != ""
	if !clientRequestID {
		cmd.RequestID = e.newID()
	}

	lock := e.lockFor(cmd.MatchID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.quarantined(cmd.MatchID); err != nil {
		return Result{}, err
	}

	// A request id scopes the undo batch, so a reused one would make a
	// later undo remove more than its own events.
	if clientRequestID {
		prior, err := e.store.ListEventsByRequest(ctx, cmd.MatchID, cmd.RequestID)
		if err != nil {
			return Result{}, fmt.Errorf("check request id: %w", err)
		}
		if len(prior) > 0 {
			return Result{}, apperrors.WithMetadata(apperrors.CodeDuplicateRequest,
				"request id was already used for this match",
				map[string]string{"request_id": cmd.RequestID})
		}
	}

	state, lastSeq, err := e.loadState(ctx, cmd.MatchID)
	if err != nil {
		return Result{}, err
	}

	decision := e.decider.Decide(state, cmd, e.clock().UTC())
	if !decision.Accepted() {
		return Result{Command: cmd, Decision: decision, State: state}, nil
	}

	appended := make([]event.Event, 0, len(decision.Events))
	for _, evt := range decision.Events {
		stored, err := e.store.AppendEvent(ctx, evt)
		if err != nil {
			return Result{}, fmt.Errorf("append event %s: %w", evt.Type, err)
		}
		appended = append(appended, stored)
	}

	for _, evt := range appended {
		if err := e.folder.Fold(state, evt); err != nil {
			e.quarantine(cmd.MatchID, fmt.Sprintf("fold %s seq %d: %v", evt.Type, evt.Seq, err))
			return Result{}, apperrors.Wrap(apperrors.CodeStateDiverged,
				"applying an accepted event failed; scoring is suspended", err)
		}
		lastSeq = evt.Seq
	}

	if err := e.checkpoints.SaveState(ctx, cmd.MatchID, lastSeq, state); err != nil {
		return Result{}, fmt.Errorf("save state snapshot: %w", err)
	}
	if err := e.putMatchRecord(ctx, state); err != nil {
		return Result{}, err
	}

	e.notify(ctx, Notification{
		Kind:      KindApplied,
		MatchID:   cmd.MatchID,
		RequestID: cmd.RequestID,
		Events:    appended,
		State:     state.Clone(),
	})
	return Result{Command: cmd, Decision: decision, Events: appended, State: state}, nil
}

// Undo removes the latest delivery together with every event its request
// emitted, then rebuilds the aggregate by replaying the remaining ledger.
// Only deliveries are undoable; lifecycle commands are corrected forward.
func (e *Engine) Undo(ctx context.Context, matchID string) (Result, error) {
	if matchID == "" {
		return Result{}, apperrors.New(apperrors.CodeInvalidCommand, "match id is required")
	}

	lock := e.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.quarantined(matchID); err != nil {
		return Result{}, err
	}

	latest, err := e.store.LatestEventSeq(ctx, matchID)
	if err != nil {
		return Result{}, fmt.Errorf("latest event seq: %w", err)
	}
	if latest == 0 {
		return Result{}, apperrors.New(apperrors.CodeNothingToUndo, "ledger is empty")
	}

	tail, err := e.store.ListEvents(ctx, matchID, latest-1, 1)
	if err != nil {
		return Result{}, fmt.Errorf("read ledger tail: %w", err)
	}
	if len(tail) == 0 {
		return Result{}, apperrors.New(apperrors.CodeNothingToUndo, "ledger is empty")
	}

	batch, err := e.store.ListEventsByRequest(ctx, matchID, tail[0].RequestID)
	if err != nil {
		return Result{}, fmt.Errorf("read request batch: %w", err)
	}
	if len(batch) == 0 || batch[0].Type != event.TypeDeliveryRecorded {
		return Result{}, apperrors.WithMetadata(apperrors.CodeNothingToUndo,
			"latest ledger entry is not a delivery",
			map[string]string{"last_event_type": string(tail[0].Type)})
	}

	if _, err := e.store.RemoveTail(ctx, matchID, batch[0].Seq); err != nil {
		return Result{}, fmt.Errorf("remove ledger tail: %w", err)
	}

	state, lastSeq, err := e.rebuild(ctx, matchID)
	if err != nil {
		e.quarantine(matchID, fmt.Sprintf("rebuild after undo: %v", err))
		return Result{}, apperrors.Wrap(apperrors.CodeStateDiverged,
			"replay after undo failed; scoring is suspended", err)
	}
	if err := e.checkpoints.SaveState(ctx, matchID, lastSeq, state); err != nil {
		return Result{}, fmt.Errorf("save state snapshot: %w", err)
	}
	if err := e.putMatchRecord(ctx, state); err != nil {
		return Result{}, err
	}

	e.notify(ctx, Notification{
		Kind:      KindUndone,
		MatchID:   matchID,
		RequestID: batch[0].RequestID,
		Events:    batch,
		State:     state.Clone(),
	})
	return Result{Events: batch, State: state}, nil
}

// State returns a snapshot of the aggregate for reads. Callers own the copy.
func (e *Engine) State(ctx context.Context, matchID string) (*aggregate.State, error) {
	if matchID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidCommand, "match id is required")
	}

	lock := e.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.quarantined(matchID); err != nil {
		return nil, err
	}
	state, _, err := e.loadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if state.Match.ID == "" {
		return nil, storage.ErrNotFound
	}
	return state, nil
}

// Verify replays the full ledger from empty and compares it byte-for-byte
// against the incremental snapshot. A mismatch quarantines the match.
func (e *Engine) Verify(ctx context.Context, matchID string) error {
	if matchID == "" {
		return apperrors.New(apperrors.CodeInvalidCommand, "match id is required")
	}

	lock := e.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.quarantined(matchID); err != nil {
		return err
	}

	snapshot, _, err := e.checkpoints.GetState(ctx, matchID)
	if errors.Is(err, replay.ErrCheckpointNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load state snapshot: %w", err)
	}

	replayed, _, err := e.rebuild(ctx, matchID)
	if err != nil {
		return fmt.Errorf("replay ledger: %w", err)
	}

	want, err := json.Marshal(replayed)
	if err != nil {
		return fmt.Errorf("encode replayed state: %w", err)
	}
	got, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if string(want) != string(got) {
		e.quarantine(matchID, "snapshot does not equal ledger replay")
		return apperrors.New(apperrors.CodeStateDiverged,
			"match state diverged from ledger replay; scoring is suspended")
	}
	return nil
}

// loadState returns the cached snapshot, rebuilding it from the ledger when
// the cache is cold (process restart). A match with no events yields an
// empty aggregate, which deciders treat as "match does not exist".
func (e *Engine) loadState(ctx context.Context, matchID string) (*aggregate.State, uint64, error) {
	state, lastSeq, err := e.checkpoints.GetState(ctx, matchID)
	if err == nil {
		return state, lastSeq, nil
	}
	if !errors.Is(err, replay.ErrCheckpointNotFound) {
		return nil, 0, fmt.Errorf("load state snapshot: %w", err)
	}

	state, lastSeq, err = e.rebuild(ctx, matchID)
	if err != nil {
		return nil, 0, fmt.Errorf("rebuild state: %w", err)
	}
	if lastSeq > 0 {
		if err := e.checkpoints.SaveState(ctx, matchID, lastSeq, state); err != nil {
			return nil, 0, fmt.Errorf("save state snapshot: %w", err)
		}
	}
	return state, lastSeq, nil
}

// rebuild folds the whole ledger into a fresh aggregate. It replays through
// a throwaway checkpoint store so per-page progress never overwrites the
// snapshot the engine serves.
func (e *Engine) rebuild(ctx context.Context, matchID string) (*aggregate.State, uint64, error) {
	state := &aggregate.State{}
	result, err := replay.Replay(ctx, e.store, checkpoint.NewMemory(), &e.folder, matchID, state, replay.Options{})
	if err != nil {
		return nil, 0, err
	}
	return state, result.LastSeq, nil
}

// putMatchRecord refreshes the match projection the listing endpoints read.
func (e *Engine) putMatchRecord(ctx context.Context, state *aggregate.State) error {
	now := e.clock().UTC()
	rec := storage.MatchRecord{
		ID:             state.Match.ID,
		TeamAID:        state.Match.TeamA.ID,
		TeamAName:      state.Match.TeamA.Name,
		TeamBID:        state.Match.TeamB.ID,
		TeamBName:      state.Match.TeamB.Name,
		Format:         state.Match.Format,
		Status:         state.Match.Status,
		CurrentInnings: state.Match.CurrentInnings,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	existing, err := e.store.GetMatch(ctx, rec.ID)
	switch {
	case err == nil:
		rec.CreatedAt = existing.CreatedAt
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("read match record: %w", err)
	}
	if err := e.store.PutMatch(ctx, rec); err != nil {
		return fmt.Errorf("put match record: %w", err)
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, n Notification) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, n)
}
