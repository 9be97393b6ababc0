package content

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/sakif/portfolio/internal/model"
)

// Showcase content is what the public pages render in place of a list that
// came back empty, whether nothing was saved or the admin saved []. It is
// kept apart from the resource defaults because the API must keep serving
// those verbatim: skill-categories is [] over the API, yet the home page
// still shows the bundled category cards.

//go:embed showcase/*.json
var showcaseFS embed.FS

// ShowcaseSkillCategories returns the category cards shown when no
// categories are stored.
func ShowcaseSkillCategories() []model.SkillCategory {
	var out []model.SkillCategory
	mustDecode(showcaseFS, "showcase/skill-categories.json", &out)
	return out
}

// ShowcaseSkills returns the bundled skills of one category ("technical" or
// "soft"), taken from the skills default.
func ShowcaseSkills(category string) []model.Skill {
	var all []model.Skill
	mustDecode(defaultsFS, "defaults/"+Skills+".json", &all)
	out := []model.Skill{}
	for _, s := range all {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// ShowcaseExperience returns the bundled entries of one experience type.
func ShowcaseExperience(kind string) []model.Experience {
	var all []model.Experience
	mustDecode(defaultsFS, "defaults/"+Experience+".json", &all)
	out := []model.Experience{}
	for _, e := range all {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

// mustDecode panics on a bundled file that is missing or malformed; both
// are build errors caught by the package tests.
func mustDecode(fsys embed.FS, name string, dst any) {
	b, err := fsys.ReadFile(name)
	if err == nil {
		err = json.Unmarshal(b, dst)
	}
	if err != nil {
		panic(fmt.Sprintf("content: bundled %s: %v", name, err))
	}
}
