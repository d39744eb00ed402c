package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotTemplate = errors.New("this prompt is not a template")

// ValidationError reports required template variables that were not supplied
// with a render request.
type ValidationError struct {
	Missing []string // sorted variable names
}

func (e *ValidationError) Error() string {
	return "missing required variables: " + strings.Join(e.Missing, ", ")
}

// RenderResult is the outcome of filling a template's variables.
type RenderResult struct {
	Original  string            `json:"original"`
	Variables map[string]string `json:"variables"`
	Result    string            `json:"result"`
}

// RenderPrompt substitutes the supplied values into a template prompt and
// records the usage. It fails with ErrNotTemplate for plain prompts and with
// *ValidationError when any declared variable has no value; neither failure
// mutates any state.
func RenderPrompt(prompt *models.Prompt, userID uint, values map[string]string) (*RenderResult, error) {
	if !prompt.IsTemplate {
		return nil, ErrNotTemplate
	}

	if missing := prompt.MissingVariables(values); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	result := prompt.ApplyVariables(values)

	if err := recordUsage(prompt, userID, values); err != nil {
		return nil, err
	}

	return &RenderResult{
		Original:  prompt.Content,
		Variables: values,
		Result:    result,
	}, nil
}

// MarkUsed records a usage of a prompt without rendering, for plain
// copy-and-paste use.
func MarkUsed(prompt *models.Prompt, userID uint) error {
	return recordUsage(prompt, userID, nil)
}

// recordUsage appends one immutable usage row and advances the prompt's
// aggregate counters in a single transaction. The counter update is an SQL
// increment, not a read-modify-write, so concurrent uses of the same prompt
// never lose updates. The usage timestamp and last_used are always equal.
func recordUsage(prompt *models.Prompt, userID uint, values map[string]string) error {
	now := time.Now().UTC()

	usage := &models.PromptUsage{
		PromptID: prompt.ID,
		UserID:   userID,
		UsedAt:   now,
	}
	if values != nil {
		data, err := json.Marshal(values)
		if err != nil {
			return err
		}
		usage.VariablesUsed = datatypes.JSON(data)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(usage).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Prompt{}).Where("id = ?", prompt.ID).
			UpdateColumns(map[string]interface{}{
				"use_count": gorm.Expr("use_count + ?", 1),
				"last_used": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidatePromptCache(prompt.ID)

	prompt.UseCount++
	prompt.LastUsed = &now
	return nil
}
