package models

import "time"

// User roles.
const (
	RoleRequester  = "requester"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// User is a requester, technician or administrator account. Approvers are
// regular users referenced from approval chain definitions.
type User struct {
	ID        string    `json:"id" db:"id"`
	Login     string    `json:"login" db:"login"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Password  string    `json:"-" db:"password"`
	Role      string    `json:"role" db:"role"`
	ValidID   int       `json:"valid_id" db:"valid_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName joins first and last name, falling back to the login.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Login
	}
	return name
}
