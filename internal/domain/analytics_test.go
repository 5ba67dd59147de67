package domain

import (
	"math"
	"testing"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		total     int64
		want      float64
	}{
		{"zero total", 0, 0, 0},
		{"zero total with completed", 3, 0, 0},
		{"negative total", 1, -1, 0},
		{"half", 1, 2, 50},
		{"all completed", 4, 4, 100},
		{"third", 1, 3, 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rate(tt.completed, tt.total)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Rate(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Fatalf("Rate(%d, %d) = %v, out of [0, 100]", tt.completed, tt.total, got)
			}
		})
	}
}

func TestCoachAggregateCompletionRate(t *testing.T) {
	agg := CoachAggregate{TotalSessions: 2, CompletedSessions: 1}
	if got := agg.CompletionRate(); got != 50 {
		t.Fatalf("CompletionRate() = %v, want 50", got)
	}

	empty := CoachAggregate{}
	if got := empty.CompletionRate(); got != 0 {
		t.Fatalf("CompletionRate() on empty aggregate = %v, want 0", got)
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleCoach, RoleClient, RoleAdmin} {
		if !role.Valid() {
			t.Fatalf("role %q should be valid", role)
		}
	}
	if Role("manager").Valid() {
		t.Fatalf("role manager should not be valid")
	}
}

func TestSessionStatusValid(t *testing.T) {
	for _, status := range []SessionStatus{SessionScheduled, SessionCompleted, SessionCancelled} {
		if !status.Valid() {
			t.Fatalf("status %q should be valid", status)
		}
	}
	if SessionStatus("PENDING").Valid() {
		t.Fatalf("status PENDING should not be valid")
	}
}
