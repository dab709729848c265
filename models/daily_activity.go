package models

import "time"

// DateLayout is the calendar-date format used for daily activity rows.
const DateLayout = "2006-01-02"

// DailyActivity holds at most one row per user and calendar date.
// Upserted by the authoring flow; analytics reads it and reacts to changes
// on the row matching "today".
type DailyActivity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index:idx_activity_user_date,unique;not null" json:"user_id"`
	Date         string    `gorm:"index:idx_activity_user_date,unique;size:10;not null" json:"date"`
	MinutesSpent int       `gorm:"default:0" json:"minutes_spent"`
	PoemsWritten int       `gorm:"default:0" json:"poems_written"`
	WordCount    int       `gorm:"default:0" json:"word_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Day parses the row's calendar date in the given location.
func (d *DailyActivity) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, d.Date, loc)
}
