package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/versecraft/models"
)

func TestSeedAndSnapshot(t *testing.T) {
	s := NewSession(1, nil)
	lastWrite := time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)
	s.Seed(
		models.WritingStreak{UserID: 1, CurrentStreak: 2, LongestStreak: 5, TotalWritingDays: 9, LastWriteDate: &lastWrite},
		[]models.Achievement{{ID: 1, Name: "First Poem"}},
		models.DailyActivity{UserID: 1, Date: "2024-01-02", PoemsWritten: 1},
	)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Streak.CurrentStreak)
	assert.Equal(t, 5, snap.Streak.LongestStreak)
	require.Len(t, snap.Achievements, 1)
	assert.Equal(t, "2024-01-02", snap.Today.Date)
}

func TestSeedAfterEarlyEventsInstallsSnapshot(t *testing.T) {
	// With the feed subscribed before the snapshot read, an event can land
	// ahead of the seed. The snapshot was read after it committed, so the
	// seed's wholesale install must leave exactly one copy of it.
	s := NewSession(1, nil)
	s.ApplyAchievementEvent(EventInserted, models.Achievement{ID: 1, Name: "First Poem"})
	s.ApplyStreakUpdate(models.WritingStreak{CurrentStreak: 1, LongestStreak: 1})

	s.Seed(
		models.WritingStreak{CurrentStreak: 1, LongestStreak: 1, TotalWritingDays: 1},
		[]models.Achievement{{ID: 1, Name: "First Poem"}},
		models.DailyActivity{Date: "2024-01-03", PoemsWritten: 1},
	)

	snap := s.Snapshot()
	require.Len(t, snap.Achievements, 1)
	assert.Equal(t, 1, snap.Streak.CurrentStreak)
	assert.Equal(t, 1, snap.Streak.TotalWritingDays)
}

func TestStreakUpdateRaisesLongest(t *testing.T) {
	s := NewSession(1, nil)
	s.Seed(models.WritingStreak{CurrentStreak: 4, LongestStreak: 5}, nil, models.DailyActivity{})

	// A streak increment can arrive before its longest-streak recompute.
	prev, applied := s.ApplyStreakUpdate(models.WritingStreak{CurrentStreak: 7, LongestStreak: 5})

	require.True(t, applied)
	assert.Equal(t, 4, prev)
	snap := s.Snapshot()
	assert.Equal(t, 7, snap.Streak.CurrentStreak)
	assert.Equal(t, 7, snap.Streak.LongestStreak)
}

func TestStreakInvariantHoldsAcrossArbitrarySequence(t *testing.T) {
	s := NewSession(1, nil)
	updates := []models.WritingStreak{
		{CurrentStreak: 3, LongestStreak: 3},
		{CurrentStreak: 10, LongestStreak: 4},
		{CurrentStreak: 0, LongestStreak: 10},
		{CurrentStreak: 12, LongestStreak: 0},
		{CurrentStreak: 1, LongestStreak: 12},
	}
	for _, u := range updates {
		s.ApplyStreakUpdate(u)
		snap := s.Snapshot()
		assert.LessOrEqual(t, snap.Streak.CurrentStreak, snap.Streak.LongestStreak)
	}
}

func TestAchievementInsertPrepends(t *testing.T) {
	s := NewSession(1, nil)
	s.Seed(models.WritingStreak{}, []models.Achievement{{ID: 1, Name: "First Poem"}}, models.DailyActivity{})

	s.ApplyAchievementEvent(EventInserted, models.Achievement{ID: 2, Name: "Week of Words"})

	snap := s.Snapshot()
	require.Len(t, snap.Achievements, 2)
	assert.Equal(t, "Week of Words", snap.Achievements[0].Name)
	assert.Equal(t, "First Poem", snap.Achievements[1].Name)
}

func TestAchievementInsertThenUpdateKeepsOneEntry(t *testing.T) {
	s := NewSession(1, nil)
	earned := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	s.ApplyAchievementEvent(EventInserted, models.Achievement{ID: 3, Name: "First Week", EarnedAt: earned})
	s.ApplyAchievementEvent(EventUpdated, models.Achievement{ID: 3, Name: "First Week", Description: "Seven days straight", EarnedAt: earned.Add(time.Second)})

	snap := s.Snapshot()
	require.Len(t, snap.Achievements, 1)
	assert.Equal(t, "Seven days straight", snap.Achievements[0].Description)
	assert.Equal(t, earned.Add(time.Second), snap.Achievements[0].EarnedAt)
}

func TestAchievementUnknownIdentityIgnored(t *testing.T) {
	s := NewSession(1, nil)
	s.ApplyAchievementEvent(EventInserted, models.Achievement{ID: 1, Name: "First Poem"})

	assert.False(t, s.ApplyAchievementEvent(EventUpdated, models.Achievement{ID: 99, Name: "Ghost"}))
	assert.False(t, s.ApplyAchievementEvent(EventDeleted, models.Achievement{ID: 99, Name: "Ghost"}))
	assert.Len(t, s.Snapshot().Achievements, 1)
}

func TestAchievementDeleteRemoves(t *testing.T) {
	s := NewSession(1, nil)
	s.ApplyAchievementEvent(EventInserted, models.Achievement{ID: 1, Name: "First Poem"})
	s.ApplyAchievementEvent(EventInserted, models.Achievement{ID: 2, Name: "Ten Poems"})

	require.True(t, s.ApplyAchievementEvent(EventDeleted, models.Achievement{ID: 1}))

	snap := s.Snapshot()
	require.Len(t, snap.Achievements, 1)
	assert.Equal(t, uint(2), snap.Achievements[0].ID)
}

func TestAchievementMatchByNameWithoutIDs(t *testing.T) {
	s := NewSession(1, nil)
	s.ApplyAchievementEvent(EventInserted, models.Achievement{Name: "First Week"})
	s.ApplyAchievementEvent(EventUpdated, models.Achievement{Name: "First Week", Description: "updated"})

	snap := s.Snapshot()
	require.Len(t, snap.Achievements, 1)
	assert.Equal(t, "updated", snap.Achievements[0].Description)
}

func TestTodayLogUpdateRejectsOtherDates(t *testing.T) {
	s := NewSession(1, nil)
	s.now = func() time.Time { return time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC) }

	assert.False(t, s.ApplyTodayLogUpdate(models.DailyActivity{Date: "2024-01-02", PoemsWritten: 5}))
	assert.True(t, s.ApplyTodayLogUpdate(models.DailyActivity{Date: "2024-01-03", PoemsWritten: 2}))

	assert.Equal(t, 2, s.Snapshot().Today.PoemsWritten)
}

func TestClosedSessionIgnoresApplies(t *testing.T) {
	s := NewSession(1, nil)
	s.ApplyStreakUpdate(models.WritingStreak{CurrentStreak: 2, LongestStreak: 2})
	s.Close()

	_, applied := s.ApplyStreakUpdate(models.WritingStreak{CurrentStreak: 9, LongestStreak: 9})
	assert.False(t, applied)
	assert.False(t, s.ApplyAchievementEvent(EventInserted, models.Achievement{Name: "late"}))
	assert.False(t, s.ApplyTodayLogUpdate(models.DailyActivity{Date: time.Now().Format(models.DateLayout)}))

	assert.Equal(t, 2, s.Snapshot().Streak.CurrentStreak)
	assert.True(t, s.Closed())
}

func TestNotifyCoalesces(t *testing.T) {
	s := NewSession(1, nil)
	for i := 0; i < 5; i++ {
		s.ApplyStreakUpdate(models.WritingStreak{CurrentStreak: i, LongestStreak: i})
	}

	select {
	case <-s.Notify():
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-s.Notify():
		t.Fatal("notifications should coalesce to one")
	default:
	}
}
