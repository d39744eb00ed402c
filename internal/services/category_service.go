package services

import (
	"encoding/json"
	"errors"
	"time"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"

	"gorm.io/gorm"
)

const (
	categoryListCacheKey  = "categories:all"
	categoryCacheDuration = 1 * time.Hour
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name already exists")
	ErrInvalidColor     = errors.New("invalid category color")
)

// CategoryWithCount is a category annotated with the number of prompts in it.
type CategoryWithCount struct {
	models.Category
	PromptCount int64 `json:"prompt_count"`
}

// CreateCategory creates a new named grouping for prompts.
func CreateCategory(name, description string, color models.CategoryColor) (*models.Category, error) {
	if color == "" {
		color = models.CategoryColorBlue
	}
	if !models.ValidCategoryColor(color) {
		return nil, ErrInvalidColor
	}

	var existing models.Category
	if err := database.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Description: description,
		Color:       color,
	}

	if err := database.DB.Create(category).Error; err != nil {
		// A concurrent create can slip past the pre-check and hit the
		// unique index on name instead.
		var winner models.Category
		if database.DB.Where("name = ?", name).First(&winner).Error == nil {
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	invalidateCategoryCache()
	return category, nil
}

// UpdateCategory updates a category's name, description and color.
func UpdateCategory(id uint, name, description string, color models.CategoryColor) (*models.Category, error) {
	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if color != "" && !models.ValidCategoryColor(color) {
		return nil, ErrInvalidColor
	}

	category.Name = name
	category.Description = description
	if color != "" {
		category.Color = color
	}

	if err := database.DB.Save(&category).Error; err != nil {
		return nil, err
	}

	invalidateCategoryCache()
	return &category, nil
}

// DeleteCategory removes a category; prompts referencing it keep existing
// with their category reference cleared.
func DeleteCategory(id uint) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Prompt{}).Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateCategoryCache()
	return nil
}

// ListCategories retrieves all categories with their prompt counts, using
// the cache when possible.
func ListCategories() ([]CategoryWithCount, error) {
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, categoryListCacheKey).Result()
		if err == nil {
			var cached []CategoryWithCount
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	var categories []CategoryWithCount
	err := database.DB.Model(&models.Category{}).
		Select("categories.*, COUNT(prompts.id) AS prompt_count").
		Joins("LEFT JOIN prompts ON prompts.category_id = categories.id").
		Group("categories.id").
		Order("categories.name").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(categories); err == nil {
			database.RedisClient.Set(database.Ctx, categoryListCacheKey, data, categoryCacheDuration)
		}
	}

	return categories, nil
}

// GetOrCreateCategory finds a category by name, creating it with defaults
// when absent. Used by bulk import.
func GetOrCreateCategory(name string) (*models.Category, error) {
	var category models.Category
	err := database.DB.Where("name = ?", name).
		FirstOrCreate(&category, models.Category{Name: name, Color: models.CategoryColorBlue}).Error
	if err != nil {
		return nil, err
	}
	invalidateCategoryCache()
	return &category, nil
}

func invalidateCategoryCache() {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(database.Ctx, categoryListCacheKey)
}
