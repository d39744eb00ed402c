package services

import (
	"encoding/json"
	"sync"
	"testing"

	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	// Single connection so concurrent transactions serialize instead of
	// hitting SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.Migrator().DropTable(&models.PromptUsage{}, "prompt_tags",
		&models.Prompt{}, &models.Tag{}, &models.Category{}, &models.User{})

	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Tag{},
		&models.Prompt{}, &models.PromptUsage{})
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func createTemplate(t *testing.T, userID uint, title, content string) *models.Prompt {
	prompt, err := CreatePrompt(userID, PromptInput{
		Title:      title,
		Content:    content,
		IsTemplate: true,
	})
	assert.NoError(t, err)
	return prompt
}

func TestRenderPrompt(t *testing.T) {
	setupTestDB()

	prompt := createTemplate(t, 1, "code helper",
		"Write a {{language}} function for {{feature}}")
	assert.ElementsMatch(t, []string{"language", "feature"}, prompt.Variables)
	assert.Equal(t, uint(0), prompt.UseCount)
	assert.Nil(t, prompt.LastUsed)

	result, err := RenderPrompt(prompt, 1, map[string]string{
		"language": "Go",
		"feature":  "parsing JSON",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Write a Go function for parsing JSON", result.Result)
	assert.Equal(t, "Write a {{language}} function for {{feature}}", result.Original)

	var reloaded models.Prompt
	assert.NoError(t, database.DB.First(&reloaded, prompt.ID).Error)
	assert.Equal(t, uint(1), reloaded.UseCount)
	assert.NotNil(t, reloaded.LastUsed)

	var usages []models.PromptUsage
	assert.NoError(t, database.DB.Where("prompt_id = ?", prompt.ID).Find(&usages).Error)
	assert.Len(t, usages, 1)
	assert.Equal(t, uint(1), usages[0].UserID)
	assert.True(t, usages[0].UsedAt.Equal(*reloaded.LastUsed))

	var recorded map[string]string
	assert.NoError(t, json.Unmarshal(usages[0].VariablesUsed, &recorded))
	assert.Equal(t, map[string]string{"language": "Go", "feature": "parsing JSON"}, recorded)
}

func TestRenderPromptMissingVariables(t *testing.T) {
	setupTestDB()

	prompt := createTemplate(t, 1, "code helper",
		"Write a {{language}} function for {{feature}}")

	_, err := RenderPrompt(prompt, 1, map[string]string{"language": "Go"})
	assert.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"feature"}, verr.Missing)
	assert.Equal(t, "missing required variables: feature", verr.Error())

	// A rejected render leaves no trace.
	var reloaded models.Prompt
	assert.NoError(t, database.DB.First(&reloaded, prompt.ID).Error)
	assert.Equal(t, uint(0), reloaded.UseCount)
	assert.Nil(t, reloaded.LastUsed)

	var count int64
	database.DB.Model(&models.PromptUsage{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRenderPromptMissingVariablesSorted(t *testing.T) {
	setupTestDB()

	prompt := createTemplate(t, 1, "sorted", "{{zebra}} {{apple}} {{mango}}")

	_, err := RenderPrompt(prompt, 1, map[string]string{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"apple", "mango", "zebra"}, verr.Missing)
}

func TestRenderPromptNotTemplate(t *testing.T) {
	setupTestDB()

	prompt, err := CreatePrompt(1, PromptInput{
		Title:   "plain prompt",
		Content: "Just some text with {{ignored}} markers",
	})
	assert.NoError(t, err)
	assert.Empty(t, prompt.Variables)

	_, err = RenderPrompt(prompt, 1, map[string]string{"ignored": "x"})
	assert.ErrorIs(t, err, ErrNotTemplate)

	var count int64
	database.DB.Model(&models.PromptUsage{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRenderPromptNoVariables(t *testing.T) {
	setupTestDB()

	prompt := createTemplate(t, 1, "static template", "No markers in here at all")

	result, err := RenderPrompt(prompt, 1, map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, prompt.Content, result.Result)
}

func TestMarkUsed(t *testing.T) {
	setupTestDB()

	prompt, err := CreatePrompt(1, PromptInput{
		Title:   "plain prompt",
		Content: "copy and paste me somewhere useful",
	})
	assert.NoError(t, err)

	assert.NoError(t, MarkUsed(prompt, 1))
	assert.NoError(t, MarkUsed(prompt, 1))

	var reloaded models.Prompt
	assert.NoError(t, database.DB.First(&reloaded, prompt.ID).Error)
	assert.Equal(t, uint(2), reloaded.UseCount)

	var usages []models.PromptUsage
	assert.NoError(t, database.DB.Where("prompt_id = ?", prompt.ID).Find(&usages).Error)
	assert.Len(t, usages, 2)
	for _, u := range usages {
		assert.Empty(t, u.VariablesUsed)
	}
}

func TestMarkUsedMissingPrompt(t *testing.T) {
	setupTestDB()

	ghost := &models.Prompt{ID: 9999}
	err := MarkUsed(ghost, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The transaction rolled back the usage row too.
	var count int64
	database.DB.Model(&models.PromptUsage{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestConcurrentUsageRecording(t *testing.T) {
	setupTestDB()

	prompt := createTemplate(t, 1, "popular", "Say {{word}}")

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each goroutine works from its own copy, as concurrent
			// requests would.
			p := &models.Prompt{
				ID:         prompt.ID,
				Content:    prompt.Content,
				IsTemplate: true,
				Variables:  prompt.Variables,
			}
			_, err := RenderPrompt(p, 1, map[string]string{"word": "go"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	// No update was lost: the counter equals the number of usage rows.
	var reloaded models.Prompt
	assert.NoError(t, database.DB.First(&reloaded, prompt.ID).Error)
	assert.Equal(t, uint(n), reloaded.UseCount)

	var count int64
	database.DB.Model(&models.PromptUsage{}).Where("prompt_id = ?", prompt.ID).Count(&count)
	assert.Equal(t, int64(n), count)
}
