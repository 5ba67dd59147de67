package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coachbook/coachbook/internal/auth"
	"github.com/coachbook/coachbook/internal/domain"
	"github.com/coachbook/coachbook/internal/repository"
)

type sessionCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ScheduledAt string  `json:"scheduledAt"`
	ClientID    string  `json:"clientId"`
}

type sessionUpdateRequest struct {
	Status string `json:"status"`
}

type sessionResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	ClientID    string    `json:"clientId"`
	CoachID     string    `json:"coachId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	if claims.Role != domain.RoleCoach {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only coaches can create sessions")
		return
	}

	var req sessionCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "scheduledAt must be an RFC 3339 timestamp")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "clientId must be a valid UUID")
		return
	}

	if _, err := s.repo.Users.GetByID(r.Context(), clientID.String()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Client not found")
			return
		}
		s.logger.Printf("lookup client error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session")
		return
	}

	session, err := s.repo.Sessions.Create(r.Context(), repository.SessionCreateParams{
		Title:       req.Title,
		Description: normalizeStringPtr(req.Description),
		ScheduledAt: scheduledAt,
		ClientID:    clientID.String(),
		CoachID:     claims.Subject,
	})
	if err != nil {
		s.logger.Printf("create session error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session")
		return
	}

	s.engine.OnSessionCreated(r.Context(), session.CoachID)

	s.respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var (
		sessions []domain.Session
		err      error
	)
	if claims.Role == domain.RoleCoach {
		sessions, err = s.repo.Sessions.ListByCoach(r.Context(), claims.Subject)
	} else {
		sessions, err = s.repo.Sessions.ListByClient(r.Context(), claims.Subject)
	}
	if err != nil {
		s.logger.Printf("list sessions error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sessions")
		return
	}

	items := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionResponse(session))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpcomingSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	sessions, err := s.repo.Sessions.ListUpcomingByClient(r.Context(), claims.Subject, time.Now())
	if err != nil {
		s.logger.Printf("list upcoming sessions error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sessions")
		return
	}

	items := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionResponse(session))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	session, done := s.fetchSession(w, r)
	if done {
		return
	}

	if claims.Role != domain.RoleAdmin && claims.Subject != session.CoachID && claims.Subject != session.ClientID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "You can only view your own sessions")
		return
	}

	s.respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req sessionUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	status := domain.SessionStatus(req.Status)
	if !status.Valid() || status == domain.SessionScheduled {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status must be COMPLETED or CANCELLED")
		return
	}

	s.transitionSession(w, r, claims, status)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	s.transitionSession(w, r, claims, domain.SessionCompleted)
}

// transitionSession enforces the lifecycle guards, persists the transition,
// and notifies the aggregation engine.
func (s *Server) transitionSession(w http.ResponseWriter, r *http.Request, claims auth.Claims, status domain.SessionStatus) {
	session, done := s.fetchSession(w, r)
	if done {
		return
	}

	switch status {
	case domain.SessionCompleted:
		if claims.Subject != session.ClientID {
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the session's client can complete it")
			return
		}
	case domain.SessionCancelled:
		if claims.Subject != session.ClientID && claims.Subject != session.CoachID {
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", "You can only cancel your own sessions")
			return
		}
	}
	if session.Status != domain.SessionScheduled {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Session is not in scheduled state")
		return
	}

	updated, err := s.repo.Sessions.UpdateStatus(r.Context(), session.ID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("update session status error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update session")
		return
	}

	s.engine.OnSessionStatusChanged(r.Context(), updated.CoachID, updated.Status)

	s.respondJSON(w, http.StatusOK, toSessionResponse(updated))
}

// fetchSession loads the session named by the id path param, writing the
// error response itself when done is true.
func (s *Server) fetchSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return domain.Session{}, true
	}

	session, err := s.repo.Sessions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return domain.Session{}, true
		}
		s.logger.Printf("fetch session error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch session")
		return domain.Session{}, true
	}
	return session, false
}

func toSessionResponse(session domain.Session) sessionResponse {
	return sessionResponse{
		ID:          session.ID,
		Title:       session.Title,
		Description: session.Description,
		ScheduledAt: session.ScheduledAt,
		Status:      string(session.Status),
		ClientID:    session.ClientID,
		CoachID:     session.CoachID,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}
