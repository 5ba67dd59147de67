package domain

import "time"

// Role enumerates the account types known to the system.
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCoach, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// User represents a coach, client, or admin account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
