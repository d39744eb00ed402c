package services

import (
	"encoding/json"
	"fmt"
	"time"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

const (
	trendingCacheKeyPrefix = "analytics:trending:"
	trendingCacheDuration  = 5 * time.Minute
)

// Overview aggregates a user's prompt statistics.
type Overview struct {
	TotalPrompts    int64 `json:"total_prompts"`
	TotalCategories int64 `json:"total_categories"`
	TotalUses       int64 `json:"total_uses"`
	FavoritesCount  int64 `json:"favorites_count"`
	RecentUses7Days int64 `json:"recent_uses_7days"`
}

// RecentUsage is one entry of the recent-usage feed.
type RecentUsage struct {
	ID            uint            `json:"id"`
	PromptID      uint            `json:"prompt_id"`
	PromptTitle   string          `json:"prompt_title"`
	UsedAt        time.Time       `json:"used_at"`
	VariablesUsed json.RawMessage `json:"variables_used,omitempty"`
}

// AnalyticsReport is the dashboard payload: overview counters, the user's
// most used prompts and their latest usage events.
type AnalyticsReport struct {
	Overview     Overview        `json:"overview"`
	MostUsed     []models.Prompt `json:"most_used"`
	RecentUsages []RecentUsage   `json:"recent_usages"`
}

// GetAnalytics computes the usage dashboard for one user.
func GetAnalytics(userID uint) (*AnalyticsReport, error) {
	var report AnalyticsReport

	if err := database.DB.Model(&models.Prompt{}).
		Where("user_id = ?", userID).Count(&report.Overview.TotalPrompts).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.Category{}).
		Where("id IN (?)", database.DB.Model(&models.Prompt{}).
			Select("category_id").Where("user_id = ? AND category_id IS NOT NULL", userID)).
		Count(&report.Overview.TotalCategories).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.PromptUsage{}).
		Where("user_id = ?", userID).Count(&report.Overview.TotalUses).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.Prompt{}).
		Where("user_id = ? AND is_favorite = ?", userID, true).
		Count(&report.Overview.FavoritesCount).Error; err != nil {
		return nil, err
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if err := database.DB.Model(&models.PromptUsage{}).
		Where("user_id = ? AND used_at >= ?", userID, weekAgo).
		Count(&report.Overview.RecentUses7Days).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Where("user_id = ?", userID).
		Order("use_count desc").Limit(5).Find(&report.MostUsed).Error; err != nil {
		return nil, err
	}

	var usages []models.PromptUsage
	if err := database.DB.Preload("Prompt").
		Where("user_id = ?", userID).
		Order("used_at desc").Limit(10).Find(&usages).Error; err != nil {
		return nil, err
	}

	report.RecentUsages = make([]RecentUsage, 0, len(usages))
	for _, u := range usages {
		entry := RecentUsage{
			ID:       u.ID,
			PromptID: u.PromptID,
			UsedAt:   u.UsedAt,
		}
		if u.Prompt != nil {
			entry.PromptTitle = u.Prompt.Title
		}
		if len(u.VariablesUsed) > 0 {
			entry.VariablesUsed = json.RawMessage(u.VariablesUsed)
		}
		report.RecentUsages = append(report.RecentUsages, entry)
	}

	return &report, nil
}

// TrendingPeriod maps the period parameter to a window start.
func TrendingPeriod(period string) time.Time {
	now := time.Now().UTC()
	switch period {
	case "24h":
		return now.Add(-24 * time.Hour)
	case "7d":
		return now.AddDate(0, 0, -7)
	default: // 30d
		return now.AddDate(0, 0, -30)
	}
}

// GetTrendingPrompts returns the ten most used prompts within the period
// (one of "24h", "7d", "30d"). The result is cached briefly since it is the
// same for every caller.
func GetTrendingPrompts(period string) ([]models.Prompt, error) {
	cacheKey := trendingCacheKeyPrefix + period

	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var cached []models.Prompt
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	from := TrendingPeriod(period)

	var prompts []models.Prompt
	err := database.DB.Model(&models.Prompt{}).
		Joins("JOIN prompt_usages ON prompt_usages.prompt_id = prompts.id").
		Where("prompt_usages.used_at >= ?", from).
		Group("prompts.id").
		Order("COUNT(prompt_usages.id) desc").
		Limit(10).
		Find(&prompts).Error
	if err != nil {
		return nil, fmt.Errorf("trending query: %w", err)
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(prompts); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, trendingCacheDuration)
		}
	}

	return prompts, nil
}
