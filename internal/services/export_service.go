package services

import (
	"errors"
	"time"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"

	"gorm.io/gorm"
)

// ExportedPrompt is the portable representation of one prompt.
type ExportedPrompt struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Category   *string           `json:"category"`
	Tags       []string          `json:"tags"`
	IsTemplate bool              `json:"is_template"`
	Variables  models.StringList `json:"variables"`
	ColorLabel models.ColorLabel `json:"color_label"`
	IsFavorite bool              `json:"is_favorite"`
	IsPublic   bool              `json:"is_public"`
}

// ExportPayload is the bulk export envelope.
type ExportPayload struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Count      int              `json:"count"`
	Prompts    []ExportedPrompt `json:"prompts"`
}

// ImportError records one prompt that could not be imported.
type ImportError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Status   string        `json:"status"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ExportPrompts serializes all of a user's prompts for backup or transfer.
func ExportPrompts(userID uint) (*ExportPayload, error) {
	var prompts []models.Prompt
	err := database.DB.Preload("Tags").Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at desc").Find(&prompts).Error
	if err != nil {
		return nil, err
	}

	payload := &ExportPayload{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(prompts),
		Prompts:    make([]ExportedPrompt, 0, len(prompts)),
	}

	for _, p := range prompts {
		exported := ExportedPrompt{
			Title:      p.Title,
			Content:    p.Content,
			Tags:       make([]string, 0, len(p.Tags)),
			IsTemplate: p.IsTemplate,
			Variables:  p.Variables,
			ColorLabel: p.ColorLabel,
			IsFavorite: p.IsFavorite,
			IsPublic:   p.IsPublic,
		}
		if p.Category != nil {
			name := p.Category.Name
			exported.Category = &name
		}
		for _, tag := range p.Tags {
			exported.Tags = append(exported.Tags, tag.Label)
		}
		payload.Prompts = append(payload.Prompts, exported)
	}

	return payload, nil
}

// ImportPrompts bulk-creates prompts for a user. Prompts whose title already
// exists are skipped unless overwrite is set, in which case they are updated
// in place. Failures are collected per item so one bad entry does not abort
// the batch.
func ImportPrompts(userID uint, prompts []ExportedPrompt, overwrite bool) (*ImportReport, error) {
	report := &ImportReport{
		Status: "completed",
		Errors: []ImportError{},
	}

	for _, item := range prompts {
		var categoryID *uint
		if item.Category != nil && *item.Category != "" {
			category, err := GetOrCreateCategory(*item.Category)
			if err != nil {
				report.Errors = append(report.Errors, ImportError{Title: item.Title, Error: err.Error()})
				continue
			}
			categoryID = &category.ID
		}

		var existing models.Prompt
		lookupErr := database.DB.Where("user_id = ? AND title = ?", userID, item.Title).
			First(&existing).Error
		if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			report.Errors = append(report.Errors, ImportError{Title: item.Title, Error: lookupErr.Error()})
			continue
		}
		found := lookupErr == nil

		if found && !overwrite {
			report.Skipped++
			continue
		}

		input := PromptInput{
			Title:      item.Title,
			Content:    item.Content,
			CategoryID: categoryID,
			Tags:       item.Tags,
			IsTemplate: item.IsTemplate,
			ColorLabel: item.ColorLabel,
			IsFavorite: item.IsFavorite,
			IsPublic:   item.IsPublic,
		}

		var err error
		if found {
			_, err = UpdatePrompt(existing.ID, userID, input)
		} else {
			_, err = CreatePrompt(userID, input)
		}
		if err != nil {
			report.Errors = append(report.Errors, ImportError{Title: item.Title, Error: err.Error()})
			continue
		}

		report.Imported++
	}

	return report, nil
}
