// Package analytics maintains the per-coach session counters.
//
// Counters are adjusted incrementally as lifecycle events arrive, O(1) per
// event, rather than recounted on every write. Events are not transactionally
// linked to the session rows that triggered them, so the counters can drift
// (out-of-order, duplicated, or lost deliveries); drift is tolerated and
// corrected lazily by recomputing from the session table, never by failing
// the triggering request.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/coachbook/coachbook/internal/domain"
	"github.com/coachbook/coachbook/internal/repository"
)

// ErrNotFound indicates the requested coach or client identity does not
// exist. A coach with zero sessions is a valid zero-valued result, not an
// error.
var ErrNotFound = errors.New("analytics: not found")

// DefaultTopLimit is used by TopCoaches when the caller does not supply a
// positive limit.
const DefaultTopLimit = 10

// Engine keeps the coach aggregates consistent with the session table and
// serves the stats read paths. It is reactive: every method is a
// request-scoped operation driven by a caller, with no background workers.
type Engine struct {
	users      *repository.UsersRepository
	sessions   *repository.SessionsRepository
	aggregates *repository.AggregatesRepository
	logger     *log.Logger
}

// New constructs an Engine over the given repositories.
func New(repo *repository.Repository, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		users:      repo.Users,
		sessions:   repo.Sessions,
		aggregates: repo.Aggregates,
		logger:     logger,
	}
}

// OnCoachCreated seeds the all-zero aggregate row for a new coach. Like all
// event hooks it is fire-and-forget: failures are logged and swallowed so the
// triggering operation is never blocked.
func (e *Engine) OnCoachCreated(ctx context.Context, coachID string) {
	if err := e.aggregates.InsertZero(ctx, coachID); err != nil {
		e.logger.Printf("analytics: seed aggregate for coach %s: %v", coachID, err)
	}
}

// OnSessionCreated records a newly booked session against the coach's
// counters. A coach with no aggregate row is a no-op, not an error.
func (e *Engine) OnSessionCreated(ctx context.Context, coachID string) {
	e.applyDelta(ctx, coachID, repository.AggregateDelta{Total: 1, Upcoming: 1})
}

// OnSessionStatusChanged folds a status transition into the coach's counters.
// Only COMPLETED and CANCELLED transitions are aggregated; anything else is
// ignored.
func (e *Engine) OnSessionStatusChanged(ctx context.Context, coachID string, status domain.SessionStatus) {
	switch status {
	case domain.SessionCompleted:
		e.applyDelta(ctx, coachID, repository.AggregateDelta{Completed: 1, Upcoming: -1})
	case domain.SessionCancelled:
		e.applyDelta(ctx, coachID, repository.AggregateDelta{Upcoming: -1})
	}
}

// OnCoachDeleted drops the coach's aggregate row.
func (e *Engine) OnCoachDeleted(ctx context.Context, coachID string) {
	if err := e.aggregates.Delete(ctx, coachID); err != nil {
		e.logger.Printf("analytics: delete aggregate for coach %s: %v", coachID, err)
	}
}

func (e *Engine) applyDelta(ctx context.Context, coachID string, delta repository.AggregateDelta) {
	updated, err := e.aggregates.ApplyDelta(ctx, coachID, delta)
	if err != nil {
		e.logger.Printf("analytics: apply delta for coach %s: %v", coachID, err)
		return
	}
	if !updated {
		// No aggregate row yet (legacy coach or a race with OnCoachCreated).
		// The next stats read repairs it from ground truth.
		e.logger.Printf("analytics: no aggregate row for coach %s, skipping delta", coachID)
	}
}

// ComputeCoachAggregate rebuilds a coach's aggregate from the session table
// and overwrites whatever row was there. It is the authoritative, drift-free
// path: idempotent and safe to call at any time, including concurrently with
// incremental events (last write wins at the row).
func (e *Engine) ComputeCoachAggregate(ctx context.Context, coachID string) (domain.CoachAggregate, error) {
	total, completed, upcoming, err := e.countForCoach(ctx, coachID)
	if err != nil {
		return domain.CoachAggregate{}, err
	}

	agg, err := e.aggregates.Overwrite(ctx, coachID, total, completed, upcoming)
	if err != nil {
		return domain.CoachAggregate{}, err
	}
	return agg, nil
}

// CoachStats serves a coach's counters plus the derived completion rate. A
// missing aggregate row triggers read-repair; ErrNotFound is returned only
// when the coach identity itself does not exist.
func (e *Engine) CoachStats(ctx context.Context, coachID string) (domain.CoachStats, error) {
	agg, err := e.aggregates.Get(ctx, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		if _, err := e.users.GetByID(ctx, coachID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.CoachStats{}, ErrNotFound
			}
			return domain.CoachStats{}, err
		}
		agg, err = e.ComputeCoachAggregate(ctx, coachID)
		if err != nil {
			return domain.CoachStats{}, err
		}
	} else if err != nil {
		return domain.CoachStats{}, err
	}

	return domain.CoachStats{
		TotalSessions:     agg.TotalSessions,
		CompletedSessions: agg.CompletedSessions,
		UpcomingSessions:  agg.UpcomingSessions,
		CompletionRate:    agg.CompletionRate(),
	}, nil
}

// ClientProgress computes a client's counters live from the session table on
// every call. Client stats have no cached aggregate, unlike coach stats; the
// asymmetry is deliberate and under product review, do not unify the paths.
func (e *Engine) ClientProgress(ctx context.Context, clientID string) (domain.ClientProgress, error) {
	if _, err := e.users.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ClientProgress{}, ErrNotFound
		}
		return domain.ClientProgress{}, err
	}

	completedStatus := domain.SessionCompleted
	scheduledStatus := domain.SessionScheduled
	now := time.Now()

	total, err := e.sessions.Count(ctx, repository.SessionCountFilter{ClientID: &clientID})
	if err != nil {
		return domain.ClientProgress{}, fmt.Errorf("count client sessions: %w", err)
	}
	completed, err := e.sessions.Count(ctx, repository.SessionCountFilter{ClientID: &clientID, Status: &completedStatus})
	if err != nil {
		return domain.ClientProgress{}, fmt.Errorf("count completed client sessions: %w", err)
	}
	upcoming, err := e.sessions.Count(ctx, repository.SessionCountFilter{ClientID: &clientID, Status: &scheduledStatus, ScheduledAfter: &now})
	if err != nil {
		return domain.ClientProgress{}, fmt.Errorf("count upcoming client sessions: %w", err)
	}

	return domain.ClientProgress{
		TotalSessions:     total,
		CompletedSessions: completed,
		UpcomingSessions:  upcoming,
		ProgressRate:      domain.Rate(completed, total),
	}, nil
}

// TopCoaches ranks coaches by completed sessions descending, reading only the
// aggregate rows (stale counters rank with their stale values until the next
// repair). Limits below 1 fall back to DefaultTopLimit.
func (e *Engine) TopCoaches(ctx context.Context, limit int) ([]domain.TopCoach, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return e.aggregates.TopByCompleted(ctx, limit)
}

func (e *Engine) countForCoach(ctx context.Context, coachID string) (total, completed, upcoming int64, err error) {
	completedStatus := domain.SessionCompleted
	scheduledStatus := domain.SessionScheduled
	now := time.Now()

	total, err = e.sessions.Count(ctx, repository.SessionCountFilter{CoachID: &coachID})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count coach sessions: %w", err)
	}
	completed, err = e.sessions.Count(ctx, repository.SessionCountFilter{CoachID: &coachID, Status: &completedStatus})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count completed coach sessions: %w", err)
	}
	upcoming, err = e.sessions.Count(ctx, repository.SessionCountFilter{CoachID: &coachID, Status: &scheduledStatus, ScheduledAfter: &now})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count upcoming coach sessions: %w", err)
	}
	return total, completed, upcoming, nil
}
