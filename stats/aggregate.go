// Package stats derives writing statistics from a snapshot of poems and
// daily activity rows. Everything here is pure: same snapshot in, same
// statistics out, no I/O. Empty input yields a zero-valued result, never an
// error.
package stats

import (
	"math"
	"time"

	"github.com/cppla/versecraft/models"
)

// Compute derives the full statistics snapshot for the trailing window
// selected by rng, ending on the calendar day of now. All date math happens
// in now's location.
func Compute(poems []models.Poem, logs []models.DailyActivity, now time.Time, rng Range) Statistics {
	loc := now.Location()
	today := startOfDay(now)
	days := rng.Days()
	windowStart := today.AddDate(0, 0, -(days - 1))
	prevStart := windowStart.AddDate(0, 0, -days)

	out := Statistics{
		MostProductiveHour:    -1,
		MostProductiveWeekday: -1,
	}

	// Dense trailing-day series, oldest first. Always exactly `days` entries.
	out.Daily = make([]DayBucket, days)
	bucketIdx := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := windowStart.AddDate(0, 0, i)
		key := d.Format(models.DateLayout)
		out.Daily[i] = DayBucket{Date: key}
		bucketIdx[key] = i
	}

	formCounts := map[string]int{}
	formOrder := []string{}

	for i := range poems {
		p := &poems[i]
		created := p.CreatedAt.In(loc)

		out.TotalPoems++
		out.TotalWords += p.WordCount

		out.HourCounts[created.Hour()]++
		out.WeekdayCounts[int(created.Weekday())]++

		form := p.FormOrDefault()
		if _, seen := formCounts[form]; !seen {
			formOrder = append(formOrder, form)
		}
		formCounts[form]++

		day := startOfDay(created)
		if idx, ok := bucketIdx[day.Format(models.DateLayout)]; ok {
			out.Daily[idx].Poems++
			out.Daily[idx].Words += p.WordCount
			out.PeriodPoems++
		} else if !day.Before(prevStart) && day.Before(windowStart) {
			out.PreviousPeriodPoems++
		}

		if p.WordCount > out.LongestPoemWords {
			out.LongestPoemWords = p.WordCount
			out.LongestPoemID = p.ID
		}
		// Zero-word drafts do not count as "shortest".
		if p.WordCount > 0 && (out.ShortestPoemID == 0 || p.WordCount < out.ShortestPoemWords) {
			out.ShortestPoemWords = p.WordCount
			out.ShortestPoemID = p.ID
		}
	}

	if out.TotalPoems > 0 {
		out.AvgWordsPerPoem = roundDiv(out.TotalWords, out.TotalPoems)
		out.MostProductiveHour = maxCountIndex(out.HourCounts[:])
		out.MostProductiveWeekday = maxCountIndex(out.WeekdayCounts[:])
	}

	out.Forms = formShares(formOrder, formCounts, out.TotalPoems)
	out.TrendPercent = trendPercent(out.PeriodPoems, out.PreviousPeriodPoems)

	for i := range logs {
		l := &logs[i]
		if day, err := l.Day(loc); err == nil && !day.Before(windowStart) && !day.After(today) {
			out.TotalMinutes += l.MinutesSpent
		}
	}

	out.CurrentStreak, out.LongestStreak = StreakFromHistory(poems, logs, now)
	return out
}

// formShares converts counts to a distribution in first-seen order with
// independently rounded percentages.
func formShares(order []string, counts map[string]int, total int) []FormShare {
	if len(order) == 0 {
		return nil
	}
	shares := make([]FormShare, 0, len(order))
	for _, form := range order {
		n := counts[form]
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(n) / float64(total) * 100))
		}
		shares = append(shares, FormShare{Form: form, Count: n, Percent: pct})
	}
	return shares
}

// trendPercent reports the this-period vs previous-period delta. A previous
// period with no activity reports 0 rather than failing on the division.
func trendPercent(current, previous int) int {
	if previous == 0 {
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// maxCountIndex returns the index holding the strict maximum; ties resolve
// to the earliest index.
func maxCountIndex(counts []int) int {
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}
	return best
}

func roundDiv(a, b int) int {
	return int(math.Round(float64(a) / float64(b)))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
