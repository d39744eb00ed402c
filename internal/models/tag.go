package models

import "time"

// Tag is a free-form label attached to prompts via a many2many join table.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Label     string    `gorm:"size:50;uniqueIndex;not null" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
