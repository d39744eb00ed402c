package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"

	"gorm.io/gorm"
)

const (
	promptCacheKeyPrefix = "prompt:id:"
	promptCacheDuration  = 1 * time.Hour
)

var (
	ErrPromptNotFound    = errors.New("prompt not found")
	ErrForbidden         = errors.New("you do not own this prompt")
	ErrInvalidColorLabel = errors.New("invalid color label")
)

// PromptInput carries the caller-editable prompt fields.
type PromptInput struct {
	Title      string
	Content    string
	CategoryID *uint
	Tags       []string
	IsTemplate bool
	ColorLabel models.ColorLabel
	IsFavorite bool
	IsPublic   bool
}

// PromptFilter defines criteria for listing prompts.
type PromptFilter struct {
	Search        string // matches title, content, or a tag label
	CategoryID    *uint
	Tags          []string // all must match
	IsTemplate    *bool
	IsFavorite    *bool
	ColorLabel    string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	OrderBy       string // e.g. "-created_at", "use_count"
	Page          int
	Limit         int
}

// CreatePrompt stores a new prompt owned by userID. The cached variable list
// is derived from content on save when the template flag is set.
func CreatePrompt(userID uint, input PromptInput) (*models.Prompt, error) {
	if input.ColorLabel == "" {
		input.ColorLabel = models.ColorLabelReady
	}
	if !models.ValidColorLabel(input.ColorLabel) {
		return nil, ErrInvalidColorLabel
	}

	tags, err := upsertTags(input.Tags)
	if err != nil {
		return nil, err
	}

	prompt := &models.Prompt{
		UserID:     userID,
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		Tags:       tags,
		IsTemplate: input.IsTemplate,
		ColorLabel: input.ColorLabel,
		IsFavorite: input.IsFavorite,
		IsPublic:   input.IsPublic,
	}

	if err := database.DB.Create(prompt).Error; err != nil {
		return nil, err
	}

	return GetPrompt(prompt.ID, userID)
}

// GetPrompt retrieves a prompt visible to userID: their own or a public one.
// Prompts outside that set are reported as not found, not as forbidden.
func GetPrompt(id, userID uint) (*models.Prompt, error) {
	cacheKey := fmt.Sprintf("%s%d", promptCacheKeyPrefix, id)

	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var prompt models.Prompt
			if err := json.Unmarshal([]byte(val), &prompt); err == nil {
				return checkVisibility(&prompt, userID)
			}
		}
	}

	var prompt models.Prompt
	if err := database.DB.Preload("Tags").Preload("Category").First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(prompt); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, promptCacheDuration)
		}
	}

	return checkVisibility(&prompt, userID)
}

func checkVisibility(prompt *models.Prompt, userID uint) (*models.Prompt, error) {
	if prompt.UserID != userID && !prompt.IsPublic {
		return nil, ErrPromptNotFound
	}
	return prompt, nil
}

// UpdatePrompt applies input to an owned prompt and re-derives the variable
// list for templates.
func UpdatePrompt(id, userID uint, input PromptInput) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}

	if prompt.UserID != userID {
		return nil, ErrForbidden
	}

	if input.ColorLabel == "" {
		input.ColorLabel = prompt.ColorLabel
	}
	if !models.ValidColorLabel(input.ColorLabel) {
		return nil, ErrInvalidColorLabel
	}

	tags, err := upsertTags(input.Tags)
	if err != nil {
		return nil, err
	}

	prompt.Title = input.Title
	prompt.Content = input.Content
	prompt.CategoryID = input.CategoryID
	prompt.IsTemplate = input.IsTemplate
	prompt.ColorLabel = input.ColorLabel
	prompt.IsFavorite = input.IsFavorite
	prompt.IsPublic = input.IsPublic

	if err := database.DB.Save(&prompt).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&prompt).Association("Tags").Replace(tags); err != nil {
		return nil, err
	}

	invalidatePromptCache(id)

	return GetPrompt(id, userID)
}

// DeletePrompt removes an owned prompt together with its usage history.
func DeletePrompt(id, userID uint) error {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromptNotFound
		}
		return err
	}

	if prompt.UserID != userID {
		return ErrForbidden
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.PromptUsage{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&prompt).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&prompt).Error
	})
	if err != nil {
		return err
	}

	invalidatePromptCache(id)
	return nil
}

// promptOrderings whitelists the sortable columns; a leading "-" selects
// descending order.
var promptOrderings = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"use_count":  "use_count",
	"last_used":  "last_used",
}

// ListPrompts retrieves a paginated list of prompts visible to userID,
// narrowed by filter.
func ListPrompts(userID uint, filter PromptFilter) ([]models.Prompt, int64, error) {
	var prompts []models.Prompt
	var total int64

	query := database.DB.Model(&models.Prompt{}).
		Where("user_id = ? OR is_public = ?", userID, true)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"title LIKE ? OR content LIKE ? OR id IN (?)",
			like, like,
			database.DB.Table("prompt_tags").
				Select("prompt_tags.prompt_id").
				Joins("JOIN tags ON tags.id = prompt_tags.tag_id").
				Where("tags.label LIKE ?", like),
		)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	for _, tag := range filter.Tags {
		query = query.Where(
			"id IN (?)",
			database.DB.Table("prompt_tags").
				Select("prompt_tags.prompt_id").
				Joins("JOIN tags ON tags.id = prompt_tags.tag_id").
				Where("tags.label LIKE ?", "%"+strings.TrimSpace(tag)+"%"),
		)
	}
	if filter.IsTemplate != nil {
		query = query.Where("is_template = ?", *filter.IsTemplate)
	}
	if filter.IsFavorite != nil {
		query = query.Where("is_favorite = ?", *filter.IsFavorite)
	}
	if filter.ColorLabel != "" {
		query = query.Where("color_label = ?", filter.ColorLabel)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at desc"
	if filter.OrderBy != "" {
		field := strings.TrimPrefix(filter.OrderBy, "-")
		if col, ok := promptOrderings[field]; ok {
			if strings.HasPrefix(filter.OrderBy, "-") {
				order = col + " desc"
			} else {
				order = col + " asc"
			}
		}
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Tags").Preload("Category").
		Order(order).Offset(offset).Limit(filter.Limit).Find(&prompts).Error
	if err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

// ToggleFavorite flips the favorite flag on an owned prompt and returns the
// new value. Only the owner may favorite a prompt, even a public one.
func ToggleFavorite(id, userID uint) (bool, error) {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrPromptNotFound
		}
		return false, err
	}

	if prompt.UserID != userID {
		return false, ErrForbidden
	}

	prompt.IsFavorite = !prompt.IsFavorite
	if err := database.DB.Model(&prompt).UpdateColumn("is_favorite", prompt.IsFavorite).Error; err != nil {
		return false, err
	}

	invalidatePromptCache(id)
	return prompt.IsFavorite, nil
}

// ListFavorites retrieves the caller's favorited prompts.
func ListFavorites(userID uint) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := database.DB.Preload("Tags").Preload("Category").
		Where("user_id = ? AND is_favorite = ?", userID, true).
		Order("last_used desc").Find(&prompts).Error
	return prompts, err
}

// ListUsages retrieves the usage history of an owned prompt, newest first.
func ListUsages(promptID, userID uint, limit int) ([]models.PromptUsage, error) {
	var prompt models.Prompt
	if err := database.DB.First(&prompt, promptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	if prompt.UserID != userID {
		return nil, ErrForbidden
	}

	var usages []models.PromptUsage
	query := database.DB.Where("prompt_id = ?", promptID).Order("used_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// upsertTags resolves labels to tag rows, creating missing ones.
func upsertTags(labels []string) ([]models.Tag, error) {
	var tags []models.Tag
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		var tag models.Tag
		if err := database.DB.Where("label = ?", label).FirstOrCreate(&tag, models.Tag{Label: label}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func invalidatePromptCache(id uint) {
	if database.RedisClient == nil {
		return
	}
	cacheKey := fmt.Sprintf("%s%d", promptCacheKeyPrefix, id)
	database.RedisClient.Del(database.Ctx, cacheKey)
}
