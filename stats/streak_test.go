package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cppla/versecraft/models"
)

func TestStreakFromThreeConsecutiveDays(t *testing.T) {
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), 10, ""),
		poemAt(3, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), 10, ""),
	}

	current, longest := StreakFromHistory(poems, nil, now)

	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreakBrokenRun(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(3, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(4, time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(5, time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC), 10, ""),
	}

	current, longest := StreakFromHistory(poems, nil, now)

	assert.Equal(t, 2, current)
	assert.Equal(t, 3, longest)
}

func TestStreakCurrentZeroWhenLastActiveTooOld(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), 10, ""),
	}

	current, longest := StreakFromHistory(poems, nil, now)

	assert.Equal(t, 0, current)
	assert.Equal(t, 2, longest)
}

func TestStreakCurrentValidFromYesterday(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC), 10, ""),
	}

	current, _ := StreakFromHistory(poems, nil, now)

	assert.Equal(t, 2, current)
}

func TestStreakCountsActivityLogDays(t *testing.T) {
	now := time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), 10, ""),
	}
	// The gap day had logged minutes but no finished poem.
	logs := []models.DailyActivity{
		{UserID: 1, Date: "2024-01-02", MinutesSpent: 15},
		{UserID: 1, Date: "2023-12-20"}, // all-zero row is not activity
	}

	current, longest := StreakFromHistory(poems, logs, now)

	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreakDuplicateDaysCountOnce(t *testing.T) {
	now := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC), 10, ""),
		poemAt(3, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), 10, ""),
	}

	current, longest := StreakFromHistory(poems, nil, now)

	assert.Equal(t, 2, current)
	assert.Equal(t, 2, longest)
}

func TestStreakEmptyInput(t *testing.T) {
	current, longest := StreakFromHistory(nil, nil, time.Now())
	assert.Zero(t, current)
	assert.Zero(t, longest)
}
