package stats

import (
	"sort"
	"time"

	"github.com/cppla/versecraft/models"
)

// StreakFromHistory recomputes streaks from the raw record snapshot. This is
// the backfill/sanity-check path only; live streak state is replaced
// wholesale by authoritative updates, never inferred here.
//
// A day is active when at least one poem was created on it or its activity
// row shows any work. The current run counts only when the most recent
// active day is today or yesterday relative to now; otherwise it is 0.
func StreakFromHistory(poems []models.Poem, logs []models.DailyActivity, now time.Time) (current, longest int) {
	loc := now.Location()
	seen := map[string]struct{}{}
	for i := range poems {
		seen[startOfDay(poems[i].CreatedAt.In(loc)).Format(models.DateLayout)] = struct{}{}
	}
	for i := range logs {
		l := &logs[i]
		if l.PoemsWritten > 0 || l.MinutesSpent > 0 || l.WordCount > 0 {
			if _, err := l.Day(loc); err == nil {
				seen[l.Date] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return 0, 0
	}

	dates := make([]time.Time, 0, len(seen))
	for key := range seen {
		d, err := time.ParseInLocation(models.DateLayout, key, loc)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := startOfDay(now)
	last := dates[len(dates)-1]
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		current = run
	}
	return current, longest
}
