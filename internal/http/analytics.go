package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coachbook/coachbook/internal/analytics"
	"github.com/coachbook/coachbook/internal/domain"
)

type coachStatsResponse struct {
	TotalSessions     int64   `json:"totalSessions"`
	CompletedSessions int64   `json:"completedSessions"`
	UpcomingSessions  int64   `json:"upcomingSessions"`
	CompletionRate    float64 `json:"completionRate"`
}

type clientProgressResponse struct {
	TotalSessions     int64   `json:"totalSessions"`
	CompletedSessions int64   `json:"completedSessions"`
	UpcomingSessions  int64   `json:"upcomingSessions"`
	ProgressRate      float64 `json:"progressRate"`
}

type topCoachResponse struct {
	CoachID           string `json:"coachId"`
	CoachName         string `json:"coachName"`
	Email             string `json:"email"`
	TotalSessions     int64  `json:"totalSessions"`
	CompletedSessions int64  `json:"completedSessions"`
}

func (s *Server) handleCoachStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	if claims.Role != domain.RoleCoach {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only coaches can access coach statistics")
		return
	}

	stats, err := s.engine.CoachStats(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("coach stats error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch coach statistics")
		return
	}

	s.respondJSON(w, http.StatusOK, coachStatsResponse{
		TotalSessions:     stats.TotalSessions,
		CompletedSessions: stats.CompletedSessions,
		UpcomingSessions:  stats.UpcomingSessions,
		CompletionRate:    stats.CompletionRate,
	})
}

func (s *Server) handleClientProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	progress, err := s.engine.ClientProgress(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("client progress error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch client progress")
		return
	}

	s.respondJSON(w, http.StatusOK, clientProgressResponse{
		TotalSessions:     progress.TotalSessions,
		CompletedSessions: progress.CompletedSessions,
		UpcomingSessions:  progress.UpcomingSessions,
		ProgressRate:      progress.ProgressRate,
	})
}

func (s *Server) handleTopCoaches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseTopLimit(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	coaches, err := s.engine.TopCoaches(r.Context(), limit)
	if err != nil {
		s.logger.Printf("top coaches error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch top coaches")
		return
	}

	items := make([]topCoachResponse, 0, len(coaches))
	for _, coach := range coaches {
		items = append(items, topCoachResponse{
			CoachID:           coach.CoachID,
			CoachName:         strings.TrimSpace(coach.FirstName + " " + coach.LastName),
			Email:             coach.Email,
			TotalSessions:     coach.TotalSessions,
			CompletedSessions: coach.CompletedSessions,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

// parseTopLimit reads the optional limit query parameter. Zero means "use the
// engine default".
func parseTopLimit(query url.Values) (int, error) {
	val := strings.TrimSpace(query.Get("limit"))
	if val == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > 100 {
		limit = 100
	}
	return limit, nil
}
