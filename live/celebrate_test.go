package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/versecraft/models"
)

func shortCelebrator(dwell time.Duration) *Celebrator {
	c := NewCelebrator()
	c.milestoneDwell = dwell
	c.achievementDwell = dwell
	return c
}

func TestMilestoneTriggersCelebration(t *testing.T) {
	c := NewCelebrator()
	defer c.Stop()

	c.StreakChanged(6, 7)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, CelebrateMilestone, cur.Kind)
	assert.Equal(t, "Flame", cur.Milestone.Label)
}

func TestNonMilestoneValueStaysIdle(t *testing.T) {
	c := NewCelebrator()
	defer c.Stop()

	c.StreakChanged(7, 8)
	_, ok := c.Current()
	assert.False(t, ok)

	// An unchanged value never fires, even on a threshold.
	c.StreakChanged(7, 7)
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestAchievementTriggersCelebration(t *testing.T) {
	c := NewCelebrator()
	defer c.Stop()

	c.AchievementUnlocked(models.Achievement{Name: "First Poem"})

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, CelebrateAchievement, cur.Kind)
	require.NotNil(t, cur.Achievement)
	assert.Equal(t, "First Poem", cur.Achievement.Name)
}

func TestCelebrationExpiresAfterDwell(t *testing.T) {
	c := shortCelebrator(20 * time.Millisecond)
	defer c.Stop()

	c.StreakChanged(2, 3)
	_, ok := c.Current()
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSecondTriggerReplacesAndRestartsDwell(t *testing.T) {
	c := shortCelebrator(60 * time.Millisecond)
	defer c.Stop()

	c.StreakChanged(2, 3)
	time.Sleep(40 * time.Millisecond)
	c.AchievementUnlocked(models.Achievement{Name: "Ten Poems"})

	// Past the first trigger's dwell, the replacement is still showing.
	time.Sleep(40 * time.Millisecond)
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, CelebrateAchievement, cur.Kind)

	assert.Eventually(t, func() bool {
		_, ok := c.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestLowerStreakDoesNotClearCelebration(t *testing.T) {
	c := NewCelebrator()
	defer c.Stop()

	c.StreakChanged(6, 7)
	// An out-of-order update implying a lower streak arrives mid-celebration.
	c.StreakChanged(7, 2)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Flame", cur.Milestone.Label)
}

func TestStopClearsStateAndBlocksLaterTriggers(t *testing.T) {
	c := NewCelebrator()
	c.StreakChanged(2, 3)
	c.Stop()

	_, ok := c.Current()
	assert.False(t, ok)

	c.StreakChanged(6, 7)
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestEventsKeepLatestWhenConsumerLags(t *testing.T) {
	c := NewCelebrator()
	defer c.Stop()

	c.StreakChanged(2, 3)
	c.AchievementUnlocked(models.Achievement{Name: "Ten Poems"})

	select {
	case ev := <-c.Events():
		assert.Equal(t, CelebrateAchievement, ev.Kind)
	default:
		t.Fatal("expected a buffered celebration event")
	}
}
