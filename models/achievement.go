package models

import "time"

// Achievement is one unlocked badge for a user. Append-mostly: updates and
// deletes are supported but earn-once is the common case. Uniqueness per
// (user, name) is guaranteed by the awarding flow, not enforced here.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	EarnedAt    time.Time `gorm:"index" json:"earned_at"`
	CreatedAt   time.Time `json:"created_at"`
}
