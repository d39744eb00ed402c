package prompt

import (
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
)

type PromptRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Content    string   `json:"content" binding:"required,min=10"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
	IsTemplate bool     `json:"is_template"`
	ColorLabel string   `json:"color_label" binding:"omitempty,oneof=ready draft template update"`
	IsFavorite bool     `json:"is_favorite"`
	IsPublic   bool     `json:"is_public"`
}

type RenderRequest struct {
	VariableValues map[string]string `json:"variable_values" binding:"required"`
}

type PromptListResponse struct {
	Total int64           `json:"total"`
	Items []models.Prompt `json:"items"`
}

type FavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

type MarkUsedResponse struct {
	Status string `json:"status"`
}

type UsageListResponse struct {
	Items []models.PromptUsage `json:"items"`
}

type ImportRequest struct {
	Prompts   []services.ExportedPrompt `json:"prompts" binding:"required"`
	Overwrite bool                      `json:"overwrite"`
}
