package adherence

import (
	"context"
	"sync"
	"time"

	"healthtrack/treatment-tracker/internal/repository"

	"go.uber.org/zap"
)

// Registry hands out one Tracker per owner. Trackers never share state.
// Trackers nobody asked for within the idle window can be evicted with
// Prune or a background Run loop; the next request for that owner starts
// from a fresh load.
type Registry struct {
	repo   repository.ScheduleRepository
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	trackers map[string]*registryEntry
}

type registryEntry struct {
	tracker  *Tracker
	lastUsed time.Time
}

func NewRegistry(repo repository.ScheduleRepository, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		repo:     repo,
		logger:   logger,
		now:      time.Now,
		trackers: make(map[string]*registryEntry),
	}
}

// Tracker returns the owner's tracker, creating an idle one on first use.
func (r *Registry) Tracker(ownerID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.trackers[ownerID]
	if !ok {
		e = &registryEntry{
			tracker: NewTracker(r.repo, r.logger.With(zap.String("component", "adherence_tracker"))),
		}
		r.trackers[ownerID] = e
	}
	e.lastUsed = r.now()
	return e.tracker
}

// Len is the number of owners currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// Prune evicts trackers unused for longer than maxIdle. Trackers with a load
// or toggle in flight are kept. Returns the number evicted.
func (r *Registry) Prune(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for owner, e := range r.trackers {
		if e.lastUsed.After(cutoff) || e.tracker.busy() {
			continue
		}
		delete(r.trackers, owner)
		evicted++
	}
	return evicted
}

// Run prunes every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(maxIdle); n > 0 {
				r.logger.Debug("Evicted idle schedule trackers", zap.Int("evicted", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
