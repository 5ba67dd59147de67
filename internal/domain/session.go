package domain

import "time"

// SessionStatus tracks a session through its lifecycle.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// Valid reports whether s is a known lifecycle status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// Session represents a single booked coaching session between a coach and a client.
type Session struct {
	ID          string
	Title       string
	Description *string
	ScheduledAt time.Time
	Status      SessionStatus
	ClientID    string
	CoachID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
