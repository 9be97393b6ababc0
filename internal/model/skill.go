package model

// Skill categories understood by the public skills section.
const (
	SkillTechnical = "technical"
	SkillSoft      = "soft"
)

type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=80"`
	Level    int    `json:"level" validate:"gte=0,lte=100"`
	Category string `json:"category" validate:"required,oneof=technical soft"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// SkillCategory groups skill names under a titled card.
// Skills holds names, not ids; nothing checks they exist in the skills list.
type SkillCategory struct {
	ID     string   `json:"id"`
	Title  string   `json:"title" validate:"required,max=80"`
	Skills []string `json:"skills"`
	Icon   string   `json:"icon"`
	Color  string   `json:"color" validate:"omitempty,hexcolor"`
}
