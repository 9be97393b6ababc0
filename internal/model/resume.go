package model

// Resume layouts.
const (
	TemplateModern  = "modern"
	TemplateClassic = "classic"
	TemplateMinimal = "minimal"
)

type Resume struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Template     string       `json:"template,omitempty" validate:"omitempty,oneof=modern classic minimal"`
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
}

// ResumeView is everything the resume page and PDF need in one value: the
// resume document plus experience and skills split the way they render.
type ResumeView struct {
	Resume    Resume       `json:"resume"`
	Template  string       `json:"template"`
	Work      []Experience `json:"work"`
	Education []Experience `json:"education"`
	Technical []Skill      `json:"technical"`
	Soft      []Skill      `json:"soft"`
}
