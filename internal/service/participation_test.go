package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/domain/participation"
	apperrors "github.com/intervue/intervue-api/internal/errors"
	"github.com/intervue/intervue-api/internal/mocks"
	"github.com/intervue/intervue-api/internal/observability/metrics"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

const (
	testSubject     = "oidc|candidate-1"
	testUserID      = "11111111-1111-1111-1111-111111111111"
	testInterviewID = "22222222-2222-2222-2222-222222222222"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type participationFixture struct {
	users      *mocks.MockUserRepository
	interviews *mocks.MockInterviewRepository
	attempts   *mocks.MockAttemptRepository
	rec        *statsd.Recorder
	svc        *ParticipationService
}

func newParticipationFixture(t *testing.T, cfg config.ParticipationConfig) *participationFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &participationFixture{
		users:      mocks.NewMockUserRepository(ctrl),
		interviews: mocks.NewMockInterviewRepository(ctrl),
		attempts:   mocks.NewMockAttemptRepository(ctrl),
		rec:        &statsd.Recorder{},
	}
	expiry, err := NewExpiryPolicy(ExpiryPolicyOptions{
		Interviews: f.interviews,
		Now:        func() time.Time { return testNow },
		Metrics:    f.rec,
	})
	require.NoError(t, err)
	f.svc, err = NewParticipationService(ParticipationServiceOptions{
		Repos:   ParticipationRepos{Users: f.users, Interviews: f.interviews, Attempts: f.attempts},
		Expiry:  expiry,
		Config:  cfg,
		Metrics: f.rec,
	})
	require.NoError(t, err)
	return f
}

func (f *participationFixture) knownUser() {
	f.users.EXPECT().GetBySubject(gomock.Any(), testSubject).
		Return(&model.User{ID: testUserID, Subject: testSubject}, nil)
}

func (f *participationFixture) interview(iv *model.Interview) {
	f.interviews.EXPECT().GetByID(gomock.Any(), testInterviewID).Return(iv, nil)
}

func (f *participationFixture) history(h ...model.Attempt) {
	f.attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), testInterviewID, testUserID).Return(h, nil)
}

func newInterview(category model.InterviewCategory, status model.InterviewStatus, validateTill *time.Time) *model.Interview {
	return &model.Interview{
		ID:           testInterviewID,
		OwnerID:      "33333333-3333-3333-3333-333333333333",
		Title:        "Go concurrency",
		Category:     category,
		Kind:         model.InterviewKindVoice,
		Status:       status,
		ValidateTill: validateTill,
	}
}

func attempt(id string, status model.AttemptStatus) model.Attempt {
	return model.Attempt{ID: id, InterviewID: testInterviewID, UserID: testUserID, Status: status}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestParticipationService_Identity(t *testing.T) {
	t.Run("missing identity", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		out, err := f.svc.Initiate(context.Background(), testInterviewID, "   ")
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeUnauthorized, out.Kind)
	})

	t.Run("unknown subject", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.users.EXPECT().GetBySubject(gomock.Any(), testSubject).Return(nil, apperrors.NotFound("user not found"))
		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeUnauthorized, out.Kind)
	})

	t.Run("user store failure propagates", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		boom := errors.New("connection refused")
		f.users.EXPECT().GetBySubject(gomock.Any(), testSubject).Return(nil, boom)
		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.ErrorIs(t, err, boom)
		assert.Nil(t, out)

		samples := f.rec.Named(metrics.ParticipationOutcome)
		require.Len(t, samples, 1)
		assert.Equal(t, metrics.ResultError, samples[0].Tags["outcome"])
	})
}

func TestParticipationService_NotFound(t *testing.T) {
	f := newParticipationFixture(t, config.ParticipationConfig{})
	f.knownUser()
	f.interviews.EXPECT().GetByID(gomock.Any(), testInterviewID).Return(nil, apperrors.NotFound("interview not found"))

	out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
	require.NoError(t, err)
	assert.Equal(t, participation.OutcomeNotFound, out.Kind)
	assert.Nil(t, out.Interview)
}

func TestParticipationService_Expiry(t *testing.T) {
	t.Run("past deadline is persisted once", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryJob, model.InterviewStatusScheduled, ptrTime(testNow.Add(-time.Minute))))
		f.interviews.EXPECT().MarkExpired(gomock.Any(), testInterviewID).Return(true, nil).Times(1)

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeExpired, out.Kind)
		require.NotNil(t, out.Interview)
		assert.Equal(t, model.InterviewStatusExpired, out.Interview.Status)
		assert.Len(t, f.rec.Named(metrics.InterviewsExpired), 1)
	})

	t.Run("already expired status issues no write", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryMock, model.InterviewStatusExpired, ptrTime(testNow.Add(time.Hour))))

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeExpired, out.Kind)
	})

	t.Run("write failure still reports expired", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryMock, model.InterviewStatusCreated, ptrTime(testNow.Add(-time.Second))))
		f.interviews.EXPECT().MarkExpired(gomock.Any(), testInterviewID).Return(false, errors.New("db down"))

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeExpired, out.Kind)
	})

	t.Run("deadline equal to now is still open", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryMock, model.InterviewStatusCreated, ptrTime(testNow)))
		f.history()
		f.attempts.EXPECT().CreatePending(gomock.Any(), core.CreateAttemptParams{
			InterviewID: testInterviewID, UserID: testUserID,
		}).Return(&model.Attempt{ID: "a-new"}, nil)

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeSuccess, out.Kind)
	})
}

func TestParticipationService_RetakePolicy(t *testing.T) {
	tests := []struct {
		name        string
		category    model.InterviewCategory
		history     []model.Attempt
		wantKind    participation.OutcomeKind
		wantAttempt string
		wantCreate  bool
	}{
		{
			name:        "first attempt creates",
			category:    model.InterviewCategoryJob,
			wantKind:    participation.OutcomeSuccess,
			wantAttempt: "a-new",
			wantCreate:  true,
		},
		{
			name:     "job completed blocks",
			category: model.InterviewCategoryJob,
			history:  []model.Attempt{attempt("a1", model.AttemptStatusCompleted)},
			wantKind: participation.OutcomeAlreadyAttempted,
		},
		{
			name:        "job pending resumes",
			category:    model.InterviewCategoryJob,
			history:     []model.Attempt{attempt("a1", model.AttemptStatusPending)},
			wantKind:    participation.OutcomeSuccess,
			wantAttempt: "a1",
		},
		{
			name:        "job in progress resumes",
			category:    model.InterviewCategoryJob,
			history:     []model.Attempt{attempt("a1", model.AttemptStatusInProgress)},
			wantKind:    participation.OutcomeSuccess,
			wantAttempt: "a1",
		},
		{
			name:     "mock completed with older pending resumes pending",
			category: model.InterviewCategoryMock,
			history: []model.Attempt{
				attempt("a3", model.AttemptStatusCompleted),
				attempt("a2", model.AttemptStatusPending),
				attempt("a1", model.AttemptStatusCompleted),
			},
			wantKind:    participation.OutcomeSuccess,
			wantAttempt: "a2",
		},
		{
			name:     "mock all completed creates",
			category: model.InterviewCategoryMock,
			history: []model.Attempt{
				attempt("a2", model.AttemptStatusCompleted),
				attempt("a1", model.AttemptStatusCompleted),
			},
			wantKind:    participation.OutcomeSuccess,
			wantAttempt: "a-new",
			wantCreate:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newParticipationFixture(t, config.ParticipationConfig{})
			f.knownUser()
			f.interview(newInterview(tt.category, model.InterviewStatusCreated, nil))
			f.history(tt.history...)
			if tt.wantCreate {
				f.attempts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).
					Return(&model.Attempt{ID: "a-new", Status: model.AttemptStatusPending}, nil)
			}

			out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantAttempt, out.AttemptID)
			assert.Equal(t, tt.wantCreate, out.Created)
			if tt.wantKind == participation.OutcomeSuccess {
				require.NotNil(t, out.Interview)
				assert.Equal(t, testInterviewID, out.Interview.ID)
			}
		})
	}
}

func TestParticipationService_CreateRace(t *testing.T) {
	conflict := apperrors.Conflict("an open attempt already exists for this interview")

	t.Run("conflict resumes the winner's attempt", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryJob, model.InterviewStatusCreated, nil))
		gomock.InOrder(
			f.attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), testInterviewID, testUserID).Return(nil, nil),
			f.attempts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).Return(nil, conflict),
			f.attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), testInterviewID, testUserID).
				Return([]model.Attempt{attempt("winner", model.AttemptStatusPending)}, nil),
		)

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeSuccess, out.Kind)
		assert.Equal(t, "winner", out.AttemptID)
		assert.False(t, out.Created)
	})

	t.Run("conflict after job completion blocks", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryJob, model.InterviewStatusCreated, nil))
		gomock.InOrder(
			f.attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), testInterviewID, testUserID).Return(nil, nil),
			f.attempts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).Return(nil, conflict),
			f.attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), testInterviewID, testUserID).
				Return([]model.Attempt{attempt("done", model.AttemptStatusCompleted)}, nil),
		)

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeAlreadyAttempted, out.Kind)
	})

	t.Run("interview deleted before insert", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryMock, model.InterviewStatusCreated, nil))
		f.history()
		f.attempts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.Wrap(errors.New("fk"), apperrors.ErrCodeForeignKey, "referenced interview does not exist"))

		out, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.NoError(t, err)
		assert.Equal(t, participation.OutcomeNotFound, out.Kind)
	})

	t.Run("history failure propagates", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{})
		f.knownUser()
		f.interview(newInterview(model.InterviewCategoryMock, model.InterviewStatusCreated, nil))
		f.attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), testInterviewID, testUserID).
			Return(nil, errors.New("timeout"))

		_, err := f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list attempts")
	})
}

func TestParticipationService_Coalescing(t *testing.T) {
	t.Run("concurrent identical calls share one evaluation", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{CoalesceInFlight: true, RequestTimeout: 5 * time.Second})
		entered := make(chan struct{})
		release := make(chan struct{})
		f.users.EXPECT().GetBySubject(gomock.Any(), testSubject).
			DoAndReturn(func(context.Context, string) (*model.User, error) {
				close(entered)
				<-release
				return &model.User{ID: testUserID, Subject: testSubject}, nil
			}).Times(1)
		f.interview(newInterview(model.InterviewCategoryJob, model.InterviewStatusCreated, nil))
		f.history()
		f.attempts.EXPECT().CreatePending(gomock.Any(), gomock.Any()).
			Return(&model.Attempt{ID: "only"}, nil).Times(1)

		var wg sync.WaitGroup
		results := make([]*participation.Outcome, 2)
		errs := make([]error, 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0], errs[0] = f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		}()
		<-entered
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[1], errs[1] = f.svc.Initiate(context.Background(), testInterviewID, testSubject)
		}()
		// Give the second caller time to join the in-flight call.
		time.Sleep(100 * time.Millisecond)
		close(release)
		wg.Wait()

		for i := range results {
			require.NoError(t, errs[i])
			assert.Equal(t, "only", results[i].AttemptID)
		}
		assert.True(t, results[0].Created, "caller that ran the insert")
		assert.False(t, results[1].Created, "caller that joined the in-flight call")
	})

	t.Run("caller cancellation stops waiting", func(t *testing.T) {
		f := newParticipationFixture(t, config.ParticipationConfig{CoalesceInFlight: true, RequestTimeout: 5 * time.Second})
		release := make(chan struct{})
		done := make(chan struct{})
		f.users.EXPECT().GetBySubject(gomock.Any(), testSubject).
			DoAndReturn(func(context.Context, string) (*model.User, error) {
				defer close(done)
				<-release
				return nil, apperrors.NotFound("user not found")
			})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.svc.Initiate(ctx, testInterviewID, testSubject)
		require.ErrorIs(t, err, context.Canceled)

		close(release)
		<-done
	})
}

func TestNewParticipationService_RequiresDeps(t *testing.T) {
	_, err := NewParticipationService(ParticipationServiceOptions{})
	require.Error(t, err)
}
