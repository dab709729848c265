package models

import "time"

// WritingStreak is the singleton per-user streak row. CurrentStreak resets
// toward zero only through an authoritative update; it is never inferred
// locally from the passage of time.
type WritingStreak struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	TotalWritingDays int        `gorm:"default:0" json:"total_writing_days"`
	LastWriteDate    *time.Time `json:"last_write_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
