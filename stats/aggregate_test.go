package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/versecraft/models"
)

func poemAt(id uint, t time.Time, words int, form string) models.Poem {
	return models.Poem{ID: id, UserID: 1, Title: "p", Content: "c", Form: form, WordCount: words, CreatedAt: t}
}

func TestComputeEmptyInput(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	got := Compute(nil, nil, now, RangeWeek)

	assert.Equal(t, 0, got.TotalPoems)
	assert.Equal(t, 0, got.TotalWords)
	assert.Equal(t, 0, got.AvgWordsPerPoem)
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 0, got.LongestStreak)
	assert.Equal(t, -1, got.MostProductiveHour)
	assert.Equal(t, -1, got.MostProductiveWeekday)
	assert.Nil(t, got.Forms)
	// The daily series stays dense even with no records.
	require.Len(t, got.Daily, 7)
	for _, b := range got.Daily {
		assert.Zero(t, b.Poems)
		assert.Zero(t, b.Words)
	}
}

func TestComputeDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, now.Add(-26*time.Hour), 120, "haiku"),
		poemAt(2, now.Add(-2*time.Hour), 300, ""),
		poemAt(3, now.Add(-50*time.Hour), 80, "haiku"),
	}
	logs := []models.DailyActivity{
		{UserID: 1, Date: "2024-03-14", MinutesSpent: 25, PoemsWritten: 1, WordCount: 120},
	}

	a := Compute(poems, logs, now, RangeMonth)
	b := Compute(poems, logs, now, RangeMonth)

	assert.Equal(t, a, b)
}

func TestComputeBucketDensity(t *testing.T) {
	now := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)
	// One poem far in the past, one today: the series must still hold
	// exactly 7 entries covering the trailing days.
	poems := []models.Poem{
		poemAt(1, now.AddDate(0, 0, -100), 50, ""),
		poemAt(2, now, 75, ""),
	}

	got := Compute(poems, nil, now, RangeWeek)

	require.Len(t, got.Daily, 7)
	assert.Equal(t, "2024-06-04", got.Daily[0].Date)
	assert.Equal(t, "2024-06-10", got.Daily[6].Date)
	assert.Equal(t, 1, got.Daily[6].Poems)
	assert.Equal(t, 75, got.Daily[6].Words)
	for _, b := range got.Daily[:6] {
		assert.Zero(t, b.Poems)
	}
}

func TestComputeTotalsAndAverage(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, now, 100, ""),
		poemAt(2, now, 101, ""),
	}

	got := Compute(poems, nil, now, RangeWeek)

	assert.Equal(t, 2, got.TotalPoems)
	assert.Equal(t, 201, got.TotalWords)
	assert.Equal(t, 101, got.AvgWordsPerPoem) // 100.5 rounds up
}

func TestComputeFormDistributionRounding(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, now, 10, "haiku"),
		poemAt(2, now, 10, "sonnet"),
		poemAt(3, now, 10, "ode"),
	}

	got := Compute(poems, nil, now, RangeWeek)

	require.Len(t, got.Forms, 3)
	sum := 0
	for _, s := range got.Forms {
		assert.GreaterOrEqual(t, s.Percent, 0)
		assert.LessOrEqual(t, s.Percent, 100)
		sum += s.Percent
	}
	// Independent rounding: the sum may drift by up to one per form.
	assert.InDelta(t, 100, sum, float64(len(got.Forms)))
}

func TestComputeDefaultForm(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	got := Compute([]models.Poem{poemAt(1, now, 10, "")}, nil, now, RangeWeek)

	require.Len(t, got.Forms, 1)
	assert.Equal(t, models.DefaultForm, got.Forms[0].Form)
	assert.Equal(t, 100, got.Forms[0].Percent)
}

func TestComputeMostProductiveTieBreak(t *testing.T) {
	// One poem at 09:00 and one at 17:00: tie resolves to the earliest hour.
	now := time.Date(2024, 2, 2, 20, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, time.Date(2024, 2, 2, 17, 0, 0, 0, time.UTC), 10, ""),
		poemAt(2, time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), 10, ""),
	}

	got := Compute(poems, nil, now, RangeWeek)

	assert.Equal(t, 9, got.MostProductiveHour)
	assert.Equal(t, int(time.Friday), got.MostProductiveWeekday)
}

func TestComputeWordExtremes(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		poemAt(1, now, 0, ""), // empty draft, never "shortest"
		poemAt(2, now, 500, ""),
		poemAt(3, now, 12, ""),
	}

	got := Compute(poems, nil, now, RangeWeek)

	assert.Equal(t, uint(2), got.LongestPoemID)
	assert.Equal(t, 500, got.LongestPoemWords)
	assert.Equal(t, uint(3), got.ShortestPoemID)
	assert.Equal(t, 12, got.ShortestPoemWords)
}

func TestComputeTrendPercent(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	poems := []models.Poem{
		// Two poems this week, one the week before.
		poemAt(1, now.AddDate(0, 0, -1), 10, ""),
		poemAt(2, now.AddDate(0, 0, -2), 10, ""),
		poemAt(3, now.AddDate(0, 0, -9), 10, ""),
	}

	got := Compute(poems, nil, now, RangeWeek)

	assert.Equal(t, 2, got.PeriodPoems)
	assert.Equal(t, 1, got.PreviousPeriodPoems)
	assert.Equal(t, 100, got.TrendPercent)
}

func TestComputeTrendGuardsEmptyPreviousPeriod(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	poems := []models.Poem{poemAt(1, now, 10, "")}

	got := Compute(poems, nil, now, RangeWeek)

	assert.Equal(t, 0, got.PreviousPeriodPoems)
	assert.Equal(t, 0, got.TrendPercent)
}

func TestComputeMinutesWithinWindow(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	logs := []models.DailyActivity{
		{UserID: 1, Date: "2024-03-19", MinutesSpent: 30},
		{UserID: 1, Date: "2024-03-01", MinutesSpent: 45}, // outside the week
		{UserID: 1, Date: "not-a-date", MinutesSpent: 99},
	}

	got := Compute(nil, logs, now, RangeWeek)

	assert.Equal(t, 30, got.TotalMinutes)
}

func TestRangeDays(t *testing.T) {
	assert.Equal(t, 7, RangeWeek.Days())
	assert.Equal(t, 30, RangeMonth.Days())
	assert.Equal(t, 365, RangeYear.Days())

	r, ok := ParseRange("year")
	require.True(t, ok)
	assert.Equal(t, RangeYear, r)

	_, ok = ParseRange("decade")
	assert.False(t, ok)
}
