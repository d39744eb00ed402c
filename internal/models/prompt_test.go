package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "two variables",
			content:  "Write a {{language}} function for {{feature}}",
			expected: []string{"language", "feature"},
		},
		{
			name:     "duplicate markers counted once",
			content:  "{{name}} meets {{name}} and {{other}}",
			expected: []string{"name", "other"},
		},
		{
			name:     "no markers",
			content:  "plain text without any markers",
			expected: []string{},
		},
		{
			name:     "single braces ignored",
			content:  "a {notclosed}} and {{alsonot} here",
			expected: []string{},
		},
		{
			name:     "spaces inside braces do not match",
			content:  "{{ padded }} but {{tight}} matches",
			expected: []string{"tight"},
		},
		{
			name:     "underscores and digits",
			content:  "{{var_1}} {{var_2}} {{var_1}}",
			expected: []string{"var_1", "var_2"},
		},
		{
			name:     "case sensitive names",
			content:  "{{Name}} and {{name}}",
			expected: []string{"Name", "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.content)
			assert.ElementsMatch(t, tt.expected, got)
		})
	}
}

func TestApplyVariables(t *testing.T) {
	p := &Prompt{
		Content:    "Write a {{language}} function for {{feature}}",
		IsTemplate: true,
		Variables:  StringList{"language", "feature"},
	}

	result := p.ApplyVariables(map[string]string{
		"language": "Go",
		"feature":  "parsing JSON",
	})
	assert.Equal(t, "Write a Go function for parsing JSON", result)

	// The prompt content itself is untouched.
	assert.Equal(t, "Write a {{language}} function for {{feature}}", p.Content)
}

func TestApplyVariablesPartial(t *testing.T) {
	p := &Prompt{
		Content:    "Do {{thing}} in {{place}}",
		IsTemplate: true,
		Variables:  StringList{"thing", "place"},
	}

	// Markers without a supplied value stay verbatim in the output.
	result := p.ApplyVariables(map[string]string{"place": "production"})
	assert.Equal(t, "Do {{thing}} in production", result)
}

func TestApplyVariablesIgnoresSurplusAndUnsafeKeys(t *testing.T) {
	p := &Prompt{
		Content:    "Say {{greeting}}",
		IsTemplate: true,
		Variables:  StringList{"greeting"},
	}

	result := p.ApplyVariables(map[string]string{
		"greeting": "hello",
		"unused":   "ignored",
		"bad key!": "ignored",
	})
	assert.Equal(t, "Say hello", result)
}

func TestApplyVariablesValueNotRescanned(t *testing.T) {
	p := &Prompt{
		Content:    "{{a}} then {{b}}",
		IsTemplate: true,
		Variables:  StringList{"a", "b"},
	}

	// A value containing a marker is inserted literally, never expanded,
	// so the output does not depend on which variable is replaced first.
	for i := 0; i < 50; i++ {
		result := p.ApplyVariables(map[string]string{
			"a": "{{b}}",
			"b": "two",
		})
		assert.Equal(t, "{{b}} then two", result)
	}
}

func TestMissingVariables(t *testing.T) {
	p := &Prompt{
		Content:    "{{zebra}} {{apple}} {{mango}}",
		IsTemplate: true,
		Variables:  StringList{"zebra", "apple", "mango"},
	}

	missing := p.MissingVariables(map[string]string{"mango": "x"})
	assert.Equal(t, []string{"apple", "zebra"}, missing)

	missing = p.MissingVariables(map[string]string{
		"zebra": "a", "apple": "b", "mango": "c",
	})
	assert.Empty(t, missing)

	// Empty string values still count as supplied.
	missing = p.MissingVariables(map[string]string{
		"zebra": "", "apple": "", "mango": "",
	})
	assert.Empty(t, missing)
}

func TestMissingVariablesNonTemplate(t *testing.T) {
	p := &Prompt{
		Content:   "{{looks}} like a template but is not",
		Variables: StringList{"looks"},
	}
	assert.Nil(t, p.MissingVariables(nil))
}

func setupPromptDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&Prompt{}, &Tag{}, &Category{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func TestBeforeSaveDerivesVariables(t *testing.T) {
	db := setupPromptDB(t)

	p := Prompt{
		UserID:     1,
		Title:      "template",
		Content:    "Review this {{language}} code: {{code}}",
		IsTemplate: true,
	}
	assert.NoError(t, db.Create(&p).Error)

	var saved Prompt
	assert.NoError(t, db.First(&saved, p.ID).Error)
	assert.ElementsMatch(t, []string{"language", "code"}, saved.Variables)

	// Editing the content refreshes the derived list.
	saved.Content = "Only {{language}} now"
	assert.NoError(t, db.Save(&saved).Error)

	var updated Prompt
	assert.NoError(t, db.First(&updated, p.ID).Error)
	assert.Equal(t, StringList{"language"}, updated.Variables)
}

func TestBeforeSaveKeepsVariablesWhenFlagCleared(t *testing.T) {
	db := setupPromptDB(t)

	p := Prompt{
		UserID:     1,
		Title:      "template",
		Content:    "Hello {{name}}",
		IsTemplate: true,
	}
	assert.NoError(t, db.Create(&p).Error)
	assert.Equal(t, StringList{"name"}, p.Variables)

	// Clearing the flag leaves the previous list in place.
	p.IsTemplate = false
	assert.NoError(t, db.Save(&p).Error)

	var saved Prompt
	assert.NoError(t, db.First(&saved, p.ID).Error)
	assert.False(t, saved.IsTemplate)
	assert.Equal(t, StringList{"name"}, saved.Variables)
}
