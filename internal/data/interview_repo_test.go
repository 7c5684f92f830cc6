package data

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/domain/model"
	apperrors "github.com/intervue/intervue-api/internal/errors"
	"github.com/intervue/intervue-api/internal/testutil"
)

func TestInterviewRepo_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	t.Run("round trip", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			repo := NewInterviewRepo(db)
			ctx := context.Background()
			owner := testutil.SeedUser(t, db)
			deadline := time.Now().Add(48 * time.Hour).Truncate(time.Microsecond)

			req := testutil.NewInterviewRequest(owner).
				WithCategory(model.InterviewCategoryJob).
				WithKind(model.InterviewKindMCQ).
				WithValidateTill(deadline).
				Build()
			created, err := repo.Create(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, model.InterviewStatusCreated, created.Status)

			got, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, model.InterviewCategoryJob, got.Category)
			assert.Equal(t, model.InterviewKindMCQ, got.Kind)
			require.NotNil(t, got.ValidateTill)
			assert.True(t, deadline.Equal(*got.ValidateTill))
		})
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			repo := NewInterviewRepo(db)
			_, err := repo.GetByID(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
			assert.ErrorIs(t, err, ErrInterviewNotFound)
			_, err = repo.GetByID(context.Background(), "not-a-uuid")
			assert.ErrorIs(t, err, ErrInterviewNotFound)
		})
	})

	t.Run("invalid request", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			owner := testutil.SeedUser(t, db)
			_, err := NewInterviewRepo(db).Create(context.Background(),
				testutil.NewInterviewRequest(owner).WithTitle("  ").Build())
			assert.True(t, apperrors.IsValidation(err))
		})
	})
}

func TestInterviewRepo_MarkExpired(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	t.Run("flips once", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			repo := NewInterviewRepo(db)
			ctx := context.Background()
			owner := testutil.SeedUser(t, db)
			past := time.Now().Add(-time.Hour)
			id := testutil.SeedInterview(t, db, owner, model.InterviewCategoryJob, model.InterviewStatusScheduled, &past)

			changed, err := repo.MarkExpired(ctx, id)
			require.NoError(t, err)
			assert.True(t, changed)

			changed, err = repo.MarkExpired(ctx, id)
			require.NoError(t, err)
			assert.False(t, changed)

			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, model.InterviewStatusExpired, got.Status)
		})
	})

	t.Run("concurrent writers change the row once", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			repo := NewInterviewRepo(db)
			ctx := context.Background()
			owner := testutil.SeedUser(t, db)
			past := time.Now().Add(-time.Hour)
			id := testutil.SeedInterview(t, db, owner, model.InterviewCategoryMock, model.InterviewStatusCreated, &past)

			var flips atomic.Int32
			fns := make([]func() error, 6)
			for i := range fns {
				fns[i] = func() error {
					changed, err := repo.MarkExpired(ctx, id)
					if changed {
						flips.Add(1)
					}
					return err
				}
			}
			for _, err := range testutil.RunConcurrent(fns...) {
				require.NoError(t, err)
			}
			assert.Equal(t, int32(1), flips.Load())
		})
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			changed, err := NewInterviewRepo(db).MarkExpired(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
			require.NoError(t, err)
			assert.False(t, changed)
		})
	})
}

func TestInterviewRepo_ExpireOverdue(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewInterviewRepo(db)
		ctx := context.Background()
		owner := testutil.SeedUser(t, db)
		now := time.Now()
		past := now.Add(-time.Hour)
		future := now.Add(time.Hour)

		overdue1 := testutil.SeedInterview(t, db, owner, model.InterviewCategoryJob, model.InterviewStatusCreated, &past)
		overdue2 := testutil.SeedInterview(t, db, owner, model.InterviewCategoryMock, model.InterviewStatusScheduled, &past)
		current := testutil.SeedInterview(t, db, owner, model.InterviewCategoryJob, model.InterviewStatusCreated, &future)
		open := testutil.SeedInterview(t, db, owner, model.InterviewCategoryMock, model.InterviewStatusCreated, nil)

		n, err := repo.ExpireOverdue(ctx, core.ExpireOverdueParams{Now: now, BatchSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.ExpireOverdue(ctx, core.ExpireOverdueParams{Now: now, BatchSize: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		for id, want := range map[string]model.InterviewStatus{
			overdue1: model.InterviewStatusExpired,
			overdue2: model.InterviewStatusExpired,
			current:  model.InterviewStatusCreated,
			open:     model.InterviewStatusCreated,
		} {
			got, getErr := repo.GetByID(ctx, id)
			require.NoError(t, getErr)
			assert.Equal(t, want, got.Status, id)
		}

		_, err = repo.ExpireOverdue(ctx, core.ExpireOverdueParams{Now: now})
		assert.Error(t, err)
	})
}

func TestInterviewRepo_CountCreatedSince(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		owner := testutil.SeedUser(t, db)
		start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		clock := NewFixedTimeProvider(start)
		repo := NewInterviewRepoWithTimeProvider(db, clock)

		_, err := repo.Create(ctx, testutil.NewInterviewRequest(owner).Build())
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
		_, err = repo.Create(ctx, testutil.NewInterviewRequest(owner).Build())
		require.NoError(t, err)

		n, err := repo.CountCreatedSince(ctx, owner, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = repo.CountCreatedSince(ctx, owner, start)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		list, err := repo.ListByOwner(ctx, owner, 0, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
	})
}
