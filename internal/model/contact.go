package model

// Contact message statuses, in the order an admin normally moves through them.
const (
	ContactUnread  = "unread"
	ContactRead    = "read"
	ContactReplied = "replied"
)

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Subject     string `json:"subject" validate:"max=200"`
	Message     string `json:"message" validate:"required,max=5000"`
	SubmittedAt string `json:"submittedAt"`
	Status      string `json:"status" validate:"omitempty,oneof=unread read replied"`
}
