package domain

import "time"

// CoachAggregate is the per-coach derived counter row maintained incrementally
// by the aggregation engine. The counters can transiently disagree with the
// session table (drift); recomputation from ground truth restores them.
type CoachAggregate struct {
	CoachID           string
	TotalSessions     int64
	CompletedSessions int64
	UpcomingSessions  int64
	LastUpdatedAt     time.Time
}

// CompletionRate derives the completed/total ratio as a percentage. It is
// computed at the read boundary and never stored, so the two counters remain
// the single source of truth.
func (a CoachAggregate) CompletionRate() float64 {
	return Rate(a.CompletedSessions, a.TotalSessions)
}

// CoachStats is the read-path shape for a coach's own statistics.
type CoachStats struct {
	TotalSessions     int64
	CompletedSessions int64
	UpcomingSessions  int64
	CompletionRate    float64
}

// ClientProgress is the read-path shape for a client's progress. Unlike coach
// stats it is always computed live from the session table.
type ClientProgress struct {
	TotalSessions     int64
	CompletedSessions int64
	UpcomingSessions  int64
	ProgressRate      float64
}

// TopCoach is one entry in the completed-sessions ranking.
type TopCoach struct {
	CoachID           string
	FirstName         string
	LastName          string
	Email             string
	TotalSessions     int64
	CompletedSessions int64
}

// Rate computes a completed/total percentage, guarding the zero-total case.
func Rate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
