package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/coachbook/coachbook/internal/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:    "c0ffee00-0000-4000-8000-000000000001",
		Email: "coach@example.com",
		Role:  domain.RoleCoach,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != testUser().ID {
		t.Fatalf("Subject = %s, want %s", claims.Subject, testUser().ID)
	}
	if claims.Email != "coach@example.com" {
		t.Fatalf("Email = %s, want coach@example.com", claims.Email)
	}
	if claims.Role != domain.RoleCoach {
		t.Fatalf("Role = %s, want coach", claims.Role)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Fatalf("Verify with wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)
	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := mgr.Verify(token); err != ErrInvalidToken {
		t.Fatalf("Verify expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token parts = %d, want 3", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA"
	if _, err := mgr.Verify(tampered); err != ErrInvalidToken {
		t.Fatalf("Verify tampered token: err = %v, want ErrInvalidToken", err)
	}

	if _, err := mgr.Verify("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("Verify garbage: err = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatalf("hash equals plaintext")
	}

	if err := CheckPassword(hash, "hunter2hunter2"); err != nil {
		t.Fatalf("CheckPassword with correct password: %v", err)
	}
	if err := CheckPassword(hash, "wrong-password"); err == nil {
		t.Fatalf("CheckPassword accepted wrong password")
	}
}
