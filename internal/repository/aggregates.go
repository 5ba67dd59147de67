package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachbook/coachbook/internal/domain"
)

// AggregatesRepository owns the per-coach counter rows. Counter mutations go
// through ApplyDelta, a single-statement relative update, so concurrent
// deliveries commute at the database rather than racing through an
// application-level read-modify-write.
type AggregatesRepository struct {
	pool *pgxpool.Pool
}

const aggregateColumns = `
    coach_id,
    total_sessions,
    completed_sessions,
    upcoming_sessions,
    last_updated_at
`

// AggregateDelta is a relative counter adjustment. Zero fields leave the
// corresponding counter untouched.
type AggregateDelta struct {
	Total     int64
	Completed int64
	Upcoming  int64
}

// Get fetches the aggregate row for a coach.
func (r *AggregatesRepository) Get(ctx context.Context, coachID string) (domain.CoachAggregate, error) {
	query := fmt.Sprintf(`SELECT %s FROM coach_analytics WHERE coach_id = $1`, aggregateColumns)
	agg, err := scanAggregate(r.pool.QueryRow(ctx, query, coachID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CoachAggregate{}, ErrNotFound
		}
		return domain.CoachAggregate{}, err
	}
	return agg, nil
}

// InsertZero creates the all-zero aggregate row for a freshly created coach.
// An existing row is left untouched.
func (r *AggregatesRepository) InsertZero(ctx context.Context, coachID string) error {
	const query = `
        INSERT INTO coach_analytics (coach_id)
        VALUES ($1)
        ON CONFLICT (coach_id) DO NOTHING
    `
	if _, err := r.pool.Exec(ctx, query, coachID); err != nil {
		return fmt.Errorf("insert aggregate: %w", err)
	}
	return nil
}

// ApplyDelta adjusts the counters with a single atomic relative update and
// reports whether a row was touched. A missing row yields (false, nil): the
// caller treats it as a no-op, never an error.
func (r *AggregatesRepository) ApplyDelta(ctx context.Context, coachID string, delta AggregateDelta) (bool, error) {
	const query = `
        UPDATE coach_analytics
        SET total_sessions = total_sessions + $2,
            completed_sessions = completed_sessions + $3,
            upcoming_sessions = upcoming_sessions + $4,
            last_updated_at = now()
        WHERE coach_id = $1
    `
	tag, err := r.pool.Exec(ctx, query, coachID, delta.Total, delta.Completed, delta.Upcoming)
	if err != nil {
		return false, fmt.Errorf("apply aggregate delta: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Overwrite upserts the full aggregate row, replacing whatever counters were
// there. This is the recomputation write path.
func (r *AggregatesRepository) Overwrite(ctx context.Context, coachID string, total, completed, upcoming int64) (domain.CoachAggregate, error) {
	query := fmt.Sprintf(`
        INSERT INTO coach_analytics (coach_id, total_sessions, completed_sessions, upcoming_sessions, last_updated_at)
        VALUES ($1,$2,$3,$4,now())
        ON CONFLICT (coach_id)
        DO UPDATE SET total_sessions = EXCLUDED.total_sessions,
                      completed_sessions = EXCLUDED.completed_sessions,
                      upcoming_sessions = EXCLUDED.upcoming_sessions,
                      last_updated_at = now()
        RETURNING %s
    `, aggregateColumns)

	agg, err := scanAggregate(r.pool.QueryRow(ctx, query, coachID, total, completed, upcoming))
	if err != nil {
		return domain.CoachAggregate{}, fmt.Errorf("overwrite aggregate: %w", err)
	}
	return agg, nil
}

// Delete removes the aggregate row for a coach. A missing row is not an error.
func (r *AggregatesRepository) Delete(ctx context.Context, coachID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM coach_analytics WHERE coach_id = $1`, coachID); err != nil {
		return fmt.Errorf("delete aggregate: %w", err)
	}
	return nil
}

// TopByCompleted returns up to limit coaches ordered by completed sessions
// descending. Ties break on coach_id ascending so repeated calls rank equal
// coaches identically.
func (r *AggregatesRepository) TopByCompleted(ctx context.Context, limit int) ([]domain.TopCoach, error) {
	const query = `
        SELECT a.coach_id, u.first_name, u.last_name, u.email, a.total_sessions, a.completed_sessions
        FROM coach_analytics a
        JOIN users u ON u.id = a.coach_id
        ORDER BY a.completed_sessions DESC, a.coach_id ASC
        LIMIT $1
    `
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top coaches: %w", err)
	}
	defer rows.Close()

	coaches := make([]domain.TopCoach, 0, limit)
	for rows.Next() {
		var tc domain.TopCoach
		if err := rows.Scan(&tc.CoachID, &tc.FirstName, &tc.LastName, &tc.Email, &tc.TotalSessions, &tc.CompletedSessions); err != nil {
			return nil, err
		}
		coaches = append(coaches, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}

func scanAggregate(row pgx.Row) (domain.CoachAggregate, error) {
	var agg domain.CoachAggregate
	err := row.Scan(
		&agg.CoachID,
		&agg.TotalSessions,
		&agg.CompletedSessions,
		&agg.UpcomingSessions,
		&agg.LastUpdatedAt,
	)
	if err != nil {
		return domain.CoachAggregate{}, err
	}
	return agg, nil
}
