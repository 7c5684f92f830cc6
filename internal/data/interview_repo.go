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

// Advisory lock namespace for the expiry sweeper. Major key 2000 is reserved for interview maintenance.
const (
	advisoryLockInterviewsMajor  = 2000
	advisoryLockInterviewsExpire = 1
)

const (
	interviewColumns = `id, owner_id, title, category, kind, status, validate_till, created_at, updated_at`

	interviewGetByIDQuery = `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	interviewInsertQuery = `
		INSERT INTO interviews (owner_id, title, category, kind, status, validate_till, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + interviewColumns

	interviewListByOwnerQuery = `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	// The status guard makes concurrent expiry writes collapse into one.
	interviewMarkExpiredQuery = `
		UPDATE interviews
		SET status = 'expired', updated_at = $2
		WHERE id = $1 AND status <> 'expired'`

	interviewCountCreatedSinceQuery = `
		SELECT count(*) FROM interviews WHERE owner_id = $1 AND created_at >= $2`

	interviewExpireOverdueQuery = `
		UPDATE interviews
		SET status = 'expired', updated_at = $1
		WHERE id IN (
			SELECT id FROM interviews
			WHERE status <> 'expired'
			  AND validate_till IS NOT NULL
			  AND validate_till < $1
			ORDER BY validate_till
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`
)

// InterviewRepo provides database operations for interviews.
type InterviewRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var (
	_ core.InterviewRepository       = (*InterviewRepo)(nil)
	_ core.InterviewExpiryRepository = (*InterviewRepo)(nil)
)

// NewInterviewRepo creates a new InterviewRepo with real time provider.
func NewInterviewRepo(db *sql.DB) *InterviewRepo {
	return &InterviewRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewInterviewRepoWithTimeProvider creates a new InterviewRepo with a custom time provider (useful for tests).
func NewInterviewRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *InterviewRepo {
	return &InterviewRepo{DB: db, timeProvider: tp}
}

// Create inserts a new interview.
func (r *InterviewRepo) Create(ctx context.Context, req *model.CreateInterviewRequest) (*model.Interview, error) {
	if req == nil {
		return nil, errNilRequest
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid interview")
	}
	if !validID(req.OwnerID) {
		return nil, ErrUserNotFound
	}

	var validateTill *time.Time
	if req.ValidateTill != nil {
		t := req.ValidateTill.UTC()
		validateTill = &t
	}

	iv, err := pgxutil.QueryOne[model.Interview](ctx, r.DB, interviewInsertQuery,
		req.OwnerID, req.Title, req.Category, req.Kind, req.Status, validateTill,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", apperrors.MapDBError(err))
	}
	return &iv, nil
}

// GetByID retrieves an interview by ID.
func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	if !validID(id) {
		return nil, ErrInterviewNotFound
	}
	iv, err := pgxutil.QueryOne[model.Interview](ctx, r.DB, interviewGetByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("get interview: %w", apperrors.MapDBError(err))
	}
	return &iv, nil
}

// ListByOwner lists interviews created by ownerID, newest first.
func (r *InterviewRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Interview, error) {
	if !validID(ownerID) {
		return []*model.Interview{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	offset = max(offset, 0)

	rows, err := pgxutil.QueryAll[model.Interview](ctx, r.DB, interviewListByOwnerQuery, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", apperrors.MapDBError(err))
	}
	out := make([]*model.Interview, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

// MarkExpired flips an interview to expired. It reports false when the row was
// already expired or does not exist.
func (r *InterviewRepo) MarkExpired(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var changed int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, interviewMarkExpiredQuery, id, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		changed = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark interview expired: %w", apperrors.MapDBError(err))
	}
	return changed > 0, nil
}

// CountCreatedSince counts interviews created by ownerID at or after since.
func (r *InterviewRepo) CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int, error) {
	if !validID(ownerID) {
		return 0, nil
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, interviewCountCreatedSinceQuery, ownerID, since.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count interviews: %w", apperrors.MapDBError(err))
	}
	return n, nil
}

// ExpireOverdue marks up to BatchSize overdue interviews as expired.
// Uses an advisory lock so concurrent sweeper instances do not contend on the same rows.
func (r *InterviewRepo) ExpireOverdue(ctx context.Context, params core.ExpireOverdueParams) (int64, error) {
	if params.BatchSize <= 0 {
		return 0, errors.New("batch size must be positive")
	}
	now := params.Now
	if now.IsZero() {
		now = r.timeProvider.Now()
	}

	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1, $2)",
				advisoryLockInterviewsMajor, advisoryLockInterviewsExpire).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				return nil
			}

			res, err := tx.ExecContext(ctx, interviewExpireOverdueQuery, now.UTC(), params.BatchSize)
			if err != nil {
				return fmt.Errorf("expire overdue interviews: %w", err)
			}
			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}
