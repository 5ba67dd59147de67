package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coachbook/coachbook/internal/auth"
	"github.com/coachbook/coachbook/internal/domain"
	"github.com/coachbook/coachbook/internal/repository"
)

type ctxKey int

const claimsKey ctxKey = 0

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "password must be at least 8 characters")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "firstName and lastName are required")
		return
	}

	role := domain.RoleClient
	if req.Role != "" {
		role = domain.Role(req.Role)
		if !role.Valid() || role == domain.RoleAdmin {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "role must be coach or client")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Printf("hash password error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	user, err := s.repo.Users.Create(r.Context(), repository.UserCreateParams{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Email already exists")
			return
		}
		s.logger.Printf("create user error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	if user.Role == domain.RoleCoach {
		s.engine.OnCoachCreated(r.Context(), user.ID)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Printf("issue token error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	s.respondJSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	user, err := s.repo.Users.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}
		s.logger.Printf("login lookup error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Printf("issue token error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	s.respondJSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

// requireAuth parses the bearer token and stows its claims in the request
// context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		claims, err := s.tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func claimsFrom(r *http.Request) (auth.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(auth.Claims)
	return claims, ok
}
