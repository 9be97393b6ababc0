package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/model"
)

func TestStruct_ValidSkill(t *testing.T) {
	v := New()
	err := v.Struct(model.Skill{ID: "1", Name: "Go", Level: 90, Category: "technical", Color: "#00add8"})
	assert.NoError(t, err)
}

func TestStruct_SkillRules(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		skill     model.Skill
		wantField string
		wantTag   string
	}{
		{"level above 100", model.Skill{Name: "Go", Level: 101, Category: "technical"}, "level", "lte"},
		{"negative level", model.Skill{Name: "Go", Level: -1, Category: "technical"}, "level", "gte"},
		{"unknown category", model.Skill{Name: "Go", Level: 50, Category: "magic"}, "category", "oneof"},
		{"missing name", model.Skill{Level: 50, Category: "soft"}, "name", "required"},
		{"bad color", model.Skill{Name: "Go", Level: 50, Category: "soft", Color: "blue"}, "color", "hexcolor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.skill)
			require.Error(t, err)
			details := Details(v.ValidationErrors(err))
			assert.Equal(t, tt.wantTag, details[tt.wantField], "details = %v", details)
		})
	}
}

func TestCustomTags(t *testing.T) {
	v := New()

	post := model.BlogPost{Title: "Hello", Slug: "hello-world", PublishedAt: "2024-01-15"}
	assert.NoError(t, v.Struct(post))

	post.Slug = "Hello World"
	err := v.Struct(post)
	require.Error(t, err)
	assert.Equal(t, "slug", Details(v.ValidationErrors(err))["slug"])

	post.Slug = "hello-world"
	post.PublishedAt = "15/01/2024"
	err = v.Struct(post)
	require.Error(t, err)
	assert.Equal(t, "date", Details(v.ValidationErrors(err))["publishedAt"])
}

func TestVar_DiveReportsIndex(t *testing.T) {
	v := New()
	skills := []model.Skill{
		{Name: "Go", Level: 90, Category: "technical"},
		{Name: "Rust", Level: 300, Category: "technical"},
	}

	err := v.Var(skills, "dive")
	require.Error(t, err)

	details := Details(v.ValidationErrors(err))
	assert.Equal(t, "lte", details["[1].level"], "details = %v", details)
	assert.Contains(t, Summary(v.ValidationErrors(err)), "[1].level")
}

func TestValidationErrors_NonValidatorError(t *testing.T) {
	v := New()
	assert.Nil(t, v.ValidationErrors(nil))
	assert.Equal(t, "invalid document", Summary(nil))
}
