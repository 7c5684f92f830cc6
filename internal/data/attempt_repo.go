package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/data/pgxutil"
	"github.com/intervue/intervue-api/internal/domain/model"
	apperrors "github.com/intervue/intervue-api/internal/errors"
)

const (
	attemptColumns = `id, interview_id, user_id, status, started_at, completed_at, feedback, created_at`

	attemptGetByIDQuery = `SELECT ` + attemptColumns + ` FROM attempts WHERE id = $1`

	attemptHistoryQuery = `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE interview_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC`

	// The conflict target matches attempts_one_open_per_user_idx; a concurrent
	// open attempt makes the insert return no row instead of failing.
	attemptInsertPendingQuery = `
		INSERT INTO attempts (interview_id, user_id, status, started_at)
		VALUES ($1, $2, 'pending', $3)
		ON CONFLICT (interview_id, user_id) WHERE status IN ('pending', 'in_progress') DO NOTHING
		RETURNING ` + attemptColumns

	attemptTransitionQuery = `
		UPDATE attempts
		SET status = $3,
		    completed_at = COALESCE($5, completed_at),
		    feedback = COALESCE($6, feedback)
		WHERE id = $1 AND user_id = $2 AND status = $4
		RETURNING ` + attemptColumns

	attemptOwnedStatusQuery = `SELECT status FROM attempts WHERE id = $1 AND user_id = $2`
)

// AttemptRepo provides database operations for interview attempts.
type AttemptRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ core.AttemptRepository = (*AttemptRepo)(nil)

// NewAttemptRepo creates a new AttemptRepo with real time provider.
func NewAttemptRepo(db *sql.DB) *AttemptRepo {
	return &AttemptRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewAttemptRepoWithTimeProvider creates a new AttemptRepo with a custom time provider (useful for tests).
func NewAttemptRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AttemptRepo {
	return &AttemptRepo{DB: db, timeProvider: tp}
}

// ListByInterviewAndUser returns the attempt history for the pair, newest first.
func (r *AttemptRepo) ListByInterviewAndUser(ctx context.Context, interviewID, userID string) ([]model.Attempt, error) {
	if !validID(interviewID) || !validID(userID) {
		return []model.Attempt{}, nil
	}
	rows, err := pgxutil.QueryAll[model.Attempt](ctx, r.DB, attemptHistoryQuery, interviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", apperrors.MapDBError(err))
	}
	return rows, nil
}

// CreatePending inserts a pending attempt for the pair. It returns ErrOpenAttemptExists
// when another pending or in-progress attempt already holds the slot.
func (r *AttemptRepo) CreatePending(ctx context.Context, params core.CreateAttemptParams) (*model.Attempt, error) {
	if !validID(params.InterviewID) {
		return nil, ErrInterviewNotFound
	}
	if !validID(params.UserID) {
		return nil, ErrUserNotFound
	}
	startedAt := params.StartedAt
	if startedAt.IsZero() {
		startedAt = r.timeProvider.Now()
	}

	a, err := pgxutil.QueryOne[model.Attempt](ctx, r.DB, attemptInsertPendingQuery,
		params.InterviewID, params.UserID, startedAt.UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOpenAttemptExists
		}
		mapped := apperrors.MapDBError(err)
		if apperrors.IsConflict(mapped) {
			return nil, ErrOpenAttemptExists
		}
		return nil, fmt.Errorf("create attempt: %w", mapped)
	}
	return &a, nil
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepo) GetByID(ctx context.Context, id string) (*model.Attempt, error) {
	if !validID(id) {
		return nil, ErrAttemptNotFound
	}
	a, err := pgxutil.QueryOne[model.Attempt](ctx, r.DB, attemptGetByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", apperrors.MapDBError(err))
	}
	return &a, nil
}

// Transition moves an attempt owned by params.UserID from params.From to params.To.
// The update is conditional on the current status, so a lost race yields ErrAttemptStateChanged.
func (r *AttemptRepo) Transition(ctx context.Context, params core.TransitionAttemptParams) (*model.Attempt, error) {
	if !params.From.CanTransitionTo(params.To) {
		return nil, apperrors.Validationf("cannot move attempt from %s to %s", params.From, params.To)
	}
	if !validID(params.AttemptID) || !validID(params.UserID) {
		return nil, ErrAttemptNotFound
	}

	at := params.At
	if at.IsZero() {
		at = r.timeProvider.Now()
	}
	var completedAt *time.Time
	if params.To == model.AttemptStatusCompleted {
		t := at.UTC()
		completedAt = &t
	}

	var out model.Attempt
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, attemptTransitionQuery,
			params.AttemptID, params.UserID, params.To, params.From, completedAt, params.Feedback)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Attempt])
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		// Nothing updated: tell a missing attempt apart from one in another status.
		var current string
		if scanErr := conn.QueryRow(ctx, attemptOwnedStatusQuery, params.AttemptID, params.UserID).Scan(&current); scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return ErrAttemptNotFound
			}
			return scanErr
		}
		return ErrAttemptStateChanged
	})
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) || errors.Is(err, ErrAttemptStateChanged) {
			return nil, err
		}
		return nil, fmt.Errorf("transition attempt: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}
