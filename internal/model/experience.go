package model

// Experience types. Education entries share the shape of work entries,
// with Company holding the institution.
const (
	ExperienceWork      = "work"
	ExperienceEducation = "education"
)

type Experience struct {
	ID           string   `json:"id"`
	Title        string   `json:"title" validate:"required,max=200"`
	Company      string   `json:"company" validate:"required,max=200"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"` // free text, "Present" allowed
	Description  []string `json:"description"`
	Technologies []string `json:"technologies"`
	Type         string   `json:"type" validate:"required,oneof=work education"`
}
