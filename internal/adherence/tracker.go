// Package adherence keeps a patient's treatment schedule in memory and
// tracks which days have been completed.
package adherence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"healthtrack/treatment-tracker/internal/domain"
	"healthtrack/treatment-tracker/internal/normalize"
	"healthtrack/treatment-tracker/internal/repository"

	"go.uber.org/zap"
)

// State of a tracker's collection as seen by its consumers.
type State string

const (
	StateIdle    State = "idle"    // nothing loaded yet
	StateLoading State = "loading" // a load is in flight
	StateReady   State = "ready"
	StateStale   State = "stale" // last refresh failed, showing the previous data
	StateError   State = "error" // last load failed and there is nothing to show
)

// Tracker holds the normalized schedule of one owner.
//
// Loads are numbered; only the result of the most recently started load is
// applied. Completion toggles are written to the store first and applied in
// memory only once the store confirms. A load that read the store before a
// toggle was confirmed keeps that toggle when it is applied. Toggles for the
// same entry run one at a time in the order they were issued.
type Tracker struct {
	repo   repository.ScheduleRepository
	logger *zap.Logger

	mu      sync.Mutex
	ownerID string
	entries []domain.ScheduleEntry
	state   State
	lastErr error
	loadSeq uint64
	queues  map[string]chan struct{} // entry id -> done channel of the last queued toggle

	confirmSeq uint64
	confirmed  map[string]confirmation // entry id -> latest confirmed toggle
}

type confirmation struct {
	completed bool
	seq       uint64
}

// Snapshot is a consistent view of a tracker taken under one lock.
type Snapshot struct {
	OwnerID   string
	State     State
	Entries   []domain.ScheduleEntry
	Summary   domain.AdherenceSummary
	LastError error
}

// NewTracker creates an idle tracker.
func NewTracker(repo repository.ScheduleRepository, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		repo:   repo,
		logger: logger,
		state:  StateIdle,
		queues:    make(map[string]chan struct{}),
		confirmed: make(map[string]confirmation),
	}
}

// Load fetches and normalizes ownerID's schedule and replaces the collection.
// A failed load keeps whatever was loaded before for the same owner.
func (t *Tracker) Load(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return ErrOwnerRequired
	}

	t.mu.Lock()
	t.loadSeq++
	seq := t.loadSeq
	if ownerID != t.ownerID {
		// Another owner's days must never be shown, not even as stale data.
		t.ownerID = ownerID
		t.entries = nil
		t.lastErr = nil
		t.confirmed = make(map[string]confirmation)
	}
	mark := t.confirmSeq
	t.state = StateLoading
	t.mu.Unlock()

	raw, err := t.repo.FetchSchedule(ctx, ownerID)

	var (
		entries []domain.ScheduleEntry
		dropped []*normalize.MalformedRecordError
	)
	if err == nil {
		entries, dropped = normalize.Schedule(raw)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.logger.With(zap.String("owner_id", ownerID), zap.Uint64("load_seq", seq))
	if seq != t.loadSeq {
		log.Debug("Discarding superseded schedule load", zap.Uint64("latest_seq", t.loadSeq))
		return ErrLoadSuperseded
	}

	if err != nil {
		t.lastErr = transportFailure("load schedule", err)
		if len(t.entries) > 0 {
			t.state = StateStale
		} else {
			t.state = StateError
		}
		log.Error("Failed to load treatment schedule", zap.Error(err), zap.String("state", string(t.state)))
		return t.lastErr
	}

	for _, d := range dropped {
		log.Warn("Dropped malformed schedule record",
			zap.Int("index", d.Index),
			zap.String("entry_id", d.ID),
			zap.String("reason", d.Reason))
	}

	// The fetch may predate toggles confirmed while it was in flight.
	for i := range entries {
		if c, ok := t.confirmed[entries[i].ID]; ok && c.seq > mark {
			entries[i].Completed = c.completed
		}
	}
	for id, c := range t.confirmed {
		if c.seq <= mark {
			delete(t.confirmed, id)
		}
	}

	t.entries = entries
	t.state = StateReady
	t.lastErr = nil
	log.Debug("Treatment schedule loaded", zap.Int("entries", len(entries)), zap.Int("dropped", len(dropped)))
	return nil
}

// ToggleCompletion persists completed for entryID and, once the store has
// confirmed, applies it to the in-memory entry. On any failure the collection
// is left exactly as it was.
func (t *Tracker) ToggleCompletion(ctx context.Context, entryID string, completed bool) error {
	t.mu.Lock()
	if t.indexOf(entryID) < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	owner := t.ownerID
	prev := t.queues[entryID]
	done := make(chan struct{})
	t.queues[entryID] = done
	t.mu.Unlock()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			// Our slot still has to wait for prev before it lets the next one go.
			go t.release(entryID, prev, done)
			return ctx.Err()
		}
	}
	defer t.release(entryID, nil, done)

	log := t.logger.With(zap.String("owner_id", owner), zap.String("entry_id", entryID))

	if err := t.repo.UpdateCompletion(ctx, owner, entryID, completed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Schedule entry missing from store")
			return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
		}
		wrapped := transportFailure("update completion", err)
		log.Error("Failed to update schedule completion", zap.Error(err), zap.Bool("completed", completed))

		t.mu.Lock()
		t.lastErr = wrapped
		t.mu.Unlock()
		return wrapped
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ownerID != owner {
		log.Debug("Owner changed while completion was in flight, not applying")
		return nil
	}
	if i := t.indexOf(entryID); i >= 0 {
		t.entries[i].Completed = completed
	}
	t.confirmSeq++
	t.confirmed[entryID] = confirmation{completed: completed, seq: t.confirmSeq}
	return nil
}

// release waits for prev (if any), then frees the queue slot held by done.
func (t *Tracker) release(entryID string, prev, done chan struct{}) {
	if prev != nil {
		<-prev
	}
	t.mu.Lock()
	if t.queues[entryID] == done {
		delete(t.queues, entryID)
	}
	t.mu.Unlock()
	close(done)
}

// indexOf must be called with mu held.
func (t *Tracker) indexOf(entryID string) int {
	for i := range t.entries {
		if t.entries[i].ID == entryID {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the current collection in day order.
func (t *Tracker) Entries() []domain.ScheduleEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ScheduleEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Clone()
	}
	return out
}

// Entry returns a copy of one entry.
func (t *Tracker) Entry(entryID string) (domain.ScheduleEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexOf(entryID); i >= 0 {
		return t.entries[i].Clone(), true
	}
	return domain.ScheduleEntry{}, false
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastError is the most recent load or toggle failure, nil after a good load.
func (t *Tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *Tracker) OwnerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ownerID
}

// Snapshot returns owner, state, entries, summary and last error as of one
// instant.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]domain.ScheduleEntry, len(t.entries))
	for i, e := range t.entries {
		entries[i] = e.Clone()
	}
	return Snapshot{
		OwnerID:   t.ownerID,
		State:     t.state,
		Entries:   entries,
		Summary:   domain.Summarize(t.entries),
		LastError: t.lastErr,
	}
}

// busy reports whether a load or toggle is in flight.
func (t *Tracker) busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateLoading || len(t.queues) > 0
}

// Summary counts completed days of the current collection.
func (t *Tracker) Summary() domain.AdherenceSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.Summarize(t.entries)
}
