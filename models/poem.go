package models

import "time"

// DefaultForm is assumed when a poem carries no form tag.
const DefaultForm = "free verse"

// Poem represents a finished piece written by a user. Poems are immutable
// for analytics purposes once created; edits happen in the authoring flow.
type Poem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Form      string    `gorm:"size:64" json:"form"`
	WordCount int       `gorm:"default:0" json:"word_count"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormOrDefault returns the poem's form tag, falling back to DefaultForm.
func (p *Poem) FormOrDefault() string {
	if p.Form == "" {
		return DefaultForm
	}
	return p.Form
}
