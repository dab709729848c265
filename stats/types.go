package stats

// Range selects how many trailing days of activity a computation covers.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// ParseRange maps a query-string value to a Range. Unknown values report false.
func ParseRange(s string) (Range, bool) {
	switch Range(s) {
	case RangeWeek, RangeMonth, RangeYear:
		return Range(s), true
	}
	return "", false
}

// Days returns the number of trailing calendar days the range covers.
func (r Range) Days() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeYear:
		return 365
	default:
		return 30
	}
}

// DayBucket is one calendar day of the dense activity series. Days with no
// poems are present with zero counts.
type DayBucket struct {
	Date  string `json:"date"`
	Poems int    `json:"poems"`
	Words int    `json:"words"`
}

// FormShare is one poetic form's slice of the distribution. Percent values
// are rounded independently and may not sum to exactly 100.
type FormShare struct {
	Form    string `json:"form"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// Statistics is the full derived snapshot. It is ephemeral: recomputed from
// the record snapshot on every request and never persisted.
type Statistics struct {
	TotalPoems      int `json:"total_poems"`
	TotalWords      int `json:"total_words"`
	AvgWordsPerPoem int `json:"avg_words_per_poem"`
	TotalMinutes    int `json:"total_minutes"`

	PeriodPoems         int `json:"period_poems"`
	PreviousPeriodPoems int `json:"previous_period_poems"`
	TrendPercent        int `json:"trend_percent"`

	Daily []DayBucket `json:"daily"`
	Forms []FormShare `json:"forms"`

	HourCounts    [24]int `json:"hour_counts"`
	WeekdayCounts [7]int  `json:"weekday_counts"`
	// MostProductiveHour and MostProductiveWeekday are -1 when there are no
	// poems. Ties resolve to the earliest hour or weekday.
	MostProductiveHour    int `json:"most_productive_hour"`
	MostProductiveWeekday int `json:"most_productive_weekday"`

	LongestPoemID     uint `json:"longest_poem_id"`
	LongestPoemWords  int  `json:"longest_poem_words"`
	ShortestPoemID    uint `json:"shortest_poem_id"`
	ShortestPoemWords int  `json:"shortest_poem_words"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}
