package models

import (
	"regexp"
	"sort"
	"time"

	"gorm.io/gorm"
)

type ColorLabel string

const (
	ColorLabelReady    ColorLabel = "ready"
	ColorLabelDraft    ColorLabel = "draft"
	ColorLabelTemplate ColorLabel = "template"
	ColorLabelUpdate   ColorLabel = "update"
)

// ValidColorLabel reports whether the given label is one of the known states.
func ValidColorLabel(label ColorLabel) bool {
	switch label {
	case ColorLabelReady, ColorLabelDraft, ColorLabelTemplate, ColorLabelUpdate:
		return true
	}
	return false
}

// Prompt represents one reusable text prompt, optionally a variable template
// containing {{name}} markers.
type Prompt struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"index:idx_prompts_user_created;not null" json:"user_id"`
	Title      string     `gorm:"size:200;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CategoryID *uint      `gorm:"index" json:"category_id"`
	Category   *Category  `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`
	Tags       []Tag      `gorm:"many2many:prompt_tags;" json:"tags"`
	IsTemplate bool       `gorm:"default:false" json:"is_template"`
	Variables  StringList `gorm:"type:text" json:"variables"`
	ColorLabel ColorLabel `gorm:"size:20;not null;default:'ready'" json:"color_label"`
	IsFavorite bool       `gorm:"default:false" json:"is_favorite"`
	IsPublic   bool       `gorm:"default:false" json:"is_public"`
	UseCount   uint       `gorm:"default:0;index" json:"use_count"`
	LastUsed   *time.Time `json:"last_used"`
	CreatedAt  time.Time  `gorm:"index:idx_prompts_user_created" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractVariables scans content for {{name}} markers and returns the
// deduplicated variable names, where a name is one or more word characters.
// Matching is case-sensitive and the order of the result is not significant.
func ExtractVariables(content string) StringList {
	matches := variablePattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	names := StringList{}
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// ApplyVariables replaces every {{name}} marker for each supplied pair with
// its value. Substitution is purely textual: values are not re-scanned for
// markers, names absent from the content are ignored, and markers without a
// supplied value are left verbatim in the output.
func (p *Prompt) ApplyVariables(values map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(p.Content, func(marker string) string {
		name := marker[2 : len(marker)-2]
		if value, ok := values[name]; ok {
			return value
		}
		return marker
	})
}

// MissingVariables returns the declared variables that have no value in the
// supplied map, sorted for stable error messages. Surplus keys are ignored.
// A non-template prompt has no required variables.
func (p *Prompt) MissingVariables(values map[string]string) []string {
	if !p.IsTemplate {
		return nil
	}
	var missing []string
	for _, name := range p.Variables {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// BeforeSave re-derives the cached variable list from content while the
// template flag is set. When the flag is cleared the previous list is left
// untouched; rendering never reads it in that case.
func (p *Prompt) BeforeSave(tx *gorm.DB) error {
	if p.IsTemplate {
		p.Variables = ExtractVariables(p.Content)
	}
	return nil
}
