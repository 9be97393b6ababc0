package model

// RoleAdmin is the only role the site knows about.
const RoleAdmin = "admin"

// AdminUser is the single principal allowed into the back office.
// There is no user table: the identity comes from configuration and is
// carried inside the signed session token.
type AdminUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
