package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachbook/coachbook/internal/domain"
)

// SessionsRepository provides persistence helpers for coaching sessions.
type SessionsRepository struct {
	pool *pgxpool.Pool
}

const sessionColumns = `
    id,
    title,
    description,
    scheduled_at,
    status,
    client_id,
    coach_id,
    created_at,
    updated_at
`

// SessionCreateParams bundles the fields required to book a session.
type SessionCreateParams struct {
	Title       string
	Description *string
	ScheduledAt time.Time
	ClientID    string
	CoachID     string
}

// SessionCountFilter is the predicate accepted by Count. Nil fields are
// omitted from the WHERE clause.
type SessionCountFilter struct {
	CoachID        *string
	ClientID       *string
	Status         *domain.SessionStatus
	ScheduledAfter *time.Time
}

// Create inserts a new SCHEDULED session and returns the stored entity.
func (r *SessionsRepository) Create(ctx context.Context, params SessionCreateParams) (domain.Session, error) {
	query := fmt.Sprintf(`
        INSERT INTO sessions (title, description, scheduled_at, client_id, coach_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, sessionColumns)

	row := r.pool.QueryRow(ctx, query, params.Title, params.Description, params.ScheduledAt, params.ClientID, params.CoachID)
	return scanSession(row)
}

// GetByID fetches a session by its identifier.
func (r *SessionsRepository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, ErrNotFound
		}
		return domain.Session{}, err
	}
	return session, nil
}

// ListByCoach returns all sessions coached by the given user, newest first.
func (r *SessionsRepository) ListByCoach(ctx context.Context, coachID string) ([]domain.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE coach_id = $1 ORDER BY scheduled_at DESC, id DESC`, sessionColumns)
	return r.list(ctx, query, coachID)
}

// ListByClient returns all sessions booked by the given client, newest first.
func (r *SessionsRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE client_id = $1 ORDER BY scheduled_at DESC, id DESC`, sessionColumns)
	return r.list(ctx, query, clientID)
}

// ListUpcomingByClient returns the client's future SCHEDULED sessions,
// soonest first.
func (r *SessionsRepository) ListUpcomingByClient(ctx context.Context, clientID string, after time.Time) ([]domain.Session, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM sessions
        WHERE client_id = $1 AND status = $2 AND scheduled_at > $3
        ORDER BY scheduled_at ASC, id ASC
    `, sessionColumns)
	return r.list(ctx, query, clientID, domain.SessionScheduled, after)
}

// UpdateStatus transitions a session to the given status.
func (r *SessionsRepository) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) (domain.Session, error) {
	query := fmt.Sprintf(`
        UPDATE sessions
        SET status = $2, updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, sessionColumns)

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, ErrNotFound
		}
		return domain.Session{}, err
	}
	return session, nil
}

// Count returns the number of sessions matching the filter. This is the
// ground-truth query the aggregation engine recomputes from.
func (r *SessionsRepository) Count(ctx context.Context, filter SessionCountFilter) (int64, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CoachID != nil {
		where = append(where, fmt.Sprintf("coach_id = %s", arg(*filter.CoachID)))
	}
	if filter.ClientID != nil {
		where = append(where, fmt.Sprintf("client_id = %s", arg(*filter.ClientID)))
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = %s", arg(*filter.Status)))
	}
	if filter.ScheduledAfter != nil {
		where = append(where, fmt.Sprintf("scheduled_at > %s", arg(*filter.ScheduledAfter)))
	}

	query := "SELECT COUNT(*) FROM sessions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (r *SessionsRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID,
		&session.Title,
		&session.Description,
		&session.ScheduledAt,
		&session.Status,
		&session.ClientID,
		&session.CoachID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}
