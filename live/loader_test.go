package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/versecraft/models"
	"github.com/cppla/versecraft/stats"
)

func snapshotWith(n int, now time.Time) Snapshot {
	poems := make([]models.Poem, n)
	for i := range poems {
		poems[i] = models.Poem{ID: uint(i + 1), UserID: 1, WordCount: 10, CreatedAt: now}
	}
	return Snapshot{Poems: poems}
}

func TestLoaderComputesSnapshot(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoader(1, func(ctx context.Context, userID uint, rng stats.Range) (Snapshot, error) {
		return snapshotWith(3, now), nil
	}, nil)

	got, applied := l.Load(context.Background(), stats.RangeWeek, now)

	require.True(t, applied)
	assert.Equal(t, 3, got.TotalPoems)
	cur, rng, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, stats.RangeWeek, rng)
	assert.Equal(t, got, cur)
}

func TestLoaderDiscardsStaleResponse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	monthStarted := make(chan struct{})
	releaseMonth := make(chan struct{})
	fetch := func(ctx context.Context, userID uint, rng stats.Range) (Snapshot, error) {
		if rng == stats.RangeMonth {
			close(monthStarted)
			<-releaseMonth
			return snapshotWith(30, now), nil
		}
		return snapshotWith(7, now), nil
	}
	l := NewLoader(1, fetch, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var monthResult stats.Statistics
	var monthApplied bool
	go func() {
		defer wg.Done()
		monthResult, monthApplied = l.Load(context.Background(), stats.RangeMonth, now)
	}()

	// The user flips to Week before the Month request resolves.
	<-monthStarted
	weekResult, weekApplied := l.Load(context.Background(), stats.RangeWeek, now)
	require.True(t, weekApplied)
	assert.Equal(t, 7, weekResult.TotalPoems)

	// The Month response arrives late and must be discarded.
	close(releaseMonth)
	wg.Wait()
	assert.Equal(t, 7, monthResult.TotalPoems)

	// The superseded call falls back to week-shaped statistics and must say
	// so, or a caller would store a 7-bucket series under the month key.
	assert.False(t, monthApplied)
	require.Len(t, monthResult.Daily, 7)

	cur, rng, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, stats.RangeWeek, rng)
	assert.Equal(t, 7, cur.TotalPoems)
}

func TestLoaderFetchFailureFallsBackToLastKnown(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fail := false
	l := NewLoader(1, func(ctx context.Context, userID uint, rng stats.Range) (Snapshot, error) {
		if fail {
			return Snapshot{}, errors.New("store unavailable")
		}
		return snapshotWith(2, now), nil
	}, nil)

	first, applied := l.Load(context.Background(), stats.RangeWeek, now)
	require.True(t, applied)
	assert.Equal(t, 2, first.TotalPoems)

	fail = true
	second, applied := l.Load(context.Background(), stats.RangeWeek, now)
	assert.False(t, applied)
	assert.Equal(t, first, second)
}

func TestLoaderFetchFailureOnFirstLoadYieldsZeros(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoader(1, func(ctx context.Context, userID uint, rng stats.Range) (Snapshot, error) {
		return Snapshot{}, errors.New("store unavailable")
	}, nil)

	got, applied := l.Load(context.Background(), stats.RangeWeek, now)

	assert.False(t, applied)
	assert.Zero(t, got.TotalPoems)
	require.Len(t, got.Daily, 7)
	_, _, ok := l.Current()
	assert.False(t, ok)
}
