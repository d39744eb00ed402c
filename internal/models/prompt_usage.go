package models

import (
	"time"

	"gorm.io/datatypes"
)

// PromptUsage is one historical act of using a prompt. Rows are append-only:
// created together with the prompt's counter update and never modified.
type PromptUsage struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	PromptID      uint           `gorm:"index:idx_usages_prompt_used;not null" json:"prompt_id"`
	Prompt        *Prompt        `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	UserID        uint           `gorm:"index:idx_usages_user_used;not null" json:"user_id"`
	UsedAt        time.Time      `gorm:"index:idx_usages_prompt_used;index:idx_usages_user_used" json:"used_at"`
	VariablesUsed datatypes.JSON `json:"variables_used,omitempty"`
}
