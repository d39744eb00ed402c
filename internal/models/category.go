package models

import "time"

type CategoryColor string

const (
	CategoryColorBlue   CategoryColor = "blue"
	CategoryColorGreen  CategoryColor = "green"
	CategoryColorYellow CategoryColor = "yellow"
	CategoryColorRed    CategoryColor = "red"
	CategoryColorPurple CategoryColor = "purple"
)

// ValidCategoryColor reports whether the given color is one of the choices.
func ValidCategoryColor(color CategoryColor) bool {
	switch color {
	case CategoryColorBlue, CategoryColorGreen, CategoryColorYellow,
		CategoryColorRed, CategoryColorPurple:
		return true
	}
	return false
}

// Category is a named grouping for prompts.
type Category struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Color       CategoryColor `gorm:"size:20;not null;default:'blue'" json:"color"`
	CreatedAt   time.Time     `json:"created_at"`
}
