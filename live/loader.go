package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/versecraft/models"
	"github.com/cppla/versecraft/stats"
)

// Snapshot is a point-in-time read of one user's records, the input to the
// aggregation engine.
type Snapshot struct {
	Poems []models.Poem
	Logs  []models.DailyActivity
}

// FetchFunc pulls the current snapshot for a user. The transport is not
// assumed cancellable beyond honoring ctx.
type FetchFunc func(ctx context.Context, userID uint, rng stats.Range) (Snapshot, error)

// Loader computes statistics from fetched snapshots while guarding against
// stale responses: when a newer load supersedes an in-flight one, the older
// result is discarded on arrival instead of clobbering fresher statistics.
// Fetch failures degrade to the last-known statistics (or zeros on first
// load); statistics are advisory, so nothing here returns an error.
type Loader struct {
	mu     sync.Mutex
	userID uint
	fetch  FetchFunc
	log    *zap.SugaredLogger

	gen          uint64
	hasCurrent   bool
	current      stats.Statistics
	currentRange stats.Range
}

// NewLoader creates a loader over the given fetch function.
func NewLoader(userID uint, fetch FetchFunc, log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loader{userID: userID, fetch: fetch, log: log}
}

// Load fetches a snapshot for rng and returns the freshest statistics. If a
// newer Load started while this one's fetch was in flight, this result is
// discarded and whatever the newer load produced (or the previous state) is
// returned instead. The second return reports whether the result is fresh
// data computed for rng; a superseded or failed load reports false, and the
// returned fallback may belong to a different range, so callers must not
// store it under rng's key.
func (l *Loader) Load(ctx context.Context, rng stats.Range, now time.Time) (stats.Statistics, bool) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	snap, err := l.fetch(ctx, l.userID, rng)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.log.Warnw("snapshot fetch failed, serving last-known statistics", "user_id", l.userID, "range", rng, "err", err)
		return l.lastKnownLocked(now, rng), false
	}
	if gen != l.gen {
		// Superseded while in flight; the selected range has moved on.
		l.log.Debugw("discarding stale snapshot response", "user_id", l.userID, "range", rng)
		return l.lastKnownLocked(now, rng), false
	}

	l.current = stats.Compute(snap.Poems, snap.Logs, now, rng)
	l.currentRange = rng
	l.hasCurrent = true
	return l.current, true
}

// Current returns the freshest applied statistics, if any load has landed.
func (l *Loader) Current() (stats.Statistics, stats.Range, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.currentRange, l.hasCurrent
}

func (l *Loader) lastKnownLocked(now time.Time, rng stats.Range) stats.Statistics {
	if l.hasCurrent {
		return l.current
	}
	return stats.Compute(nil, nil, now, rng)
}
