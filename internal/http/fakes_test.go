package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/domain/participation"
	"github.com/intervue/intervue-api/internal/service"
)

const (
	testSessionID = "test-session-id"
	testUserID    = "user-1"
	testSubject   = "idp|candidate-1"
)

func testSession(role domainauth.Role) *domainauth.Session {
	return &domainauth.Session{
		ID:        testSessionID,
		Subject:   testSubject,
		UserID:    testUserID,
		Email:     "candidate@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func withSessionCookie(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: testSessionID})
	return r
}

// mockAuthService is a test double for service.AuthService.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	getSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc        func(ctx context.Context, sessionID string) error

	session *domainauth.Session
}

func (m *mockAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/auth?state=test-state&nonce=test-nonce",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return testSession(domainauth.RoleCandidate), nil
}

func (m *mockAuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	if m.session != nil && sessionID == m.session.ID {
		return m.session, nil
	}
	return nil, errors.New("session not found")
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

type fakeParticipation struct {
	out *participation.Outcome
	err error

	gotInterview string
	gotSubject   string
}

func (f *fakeParticipation) Initiate(_ context.Context, interviewID, subject string) (*participation.Outcome, error) {
	f.gotInterview, f.gotSubject = interviewID, subject
	return f.out, f.err
}

type fakeAttempts struct {
	startFunc    func(attemptID, userID string) (*model.Attempt, error)
	completeFunc func(attemptID, userID, feedback string) (*model.Attempt, error)
	getFunc      func(attemptID, userID string) (*model.Attempt, error)
	listFunc     func(interviewID, userID string) ([]model.Attempt, error)
}

func (f *fakeAttempts) Start(_ context.Context, attemptID, userID string) (*model.Attempt, error) {
	return f.startFunc(attemptID, userID)
}

func (f *fakeAttempts) Complete(_ context.Context, attemptID, userID, feedback string) (*model.Attempt, error) {
	return f.completeFunc(attemptID, userID, feedback)
}

func (f *fakeAttempts) Get(_ context.Context, attemptID, userID string) (*model.Attempt, error) {
	return f.getFunc(attemptID, userID)
}

func (f *fakeAttempts) ListHistory(_ context.Context, interviewID, userID string) ([]model.Attempt, error) {
	return f.listFunc(interviewID, userID)
}

type fakeInterviews struct {
	createFunc    func(owner domainauth.Session, req *model.CreateInterviewRequest) (*model.Interview, error)
	getFunc       func(id string) (*model.Interview, error)
	listFunc      func(ownerID string, limit, offset int) ([]*model.Interview, error)
	remainingFunc func(ownerID string) (int, error)
}

func (f *fakeInterviews) Create(
	_ context.Context,
	owner domainauth.Session,
	req *model.CreateInterviewRequest,
) (*model.Interview, error) {
	return f.createFunc(owner, req)
}

func (f *fakeInterviews) GetByID(_ context.Context, id string) (*model.Interview, error) {
	return f.getFunc(id)
}

func (f *fakeInterviews) ListMine(_ context.Context, ownerID string, limit, offset int) ([]*model.Interview, error) {
	return f.listFunc(ownerID, limit, offset)
}

func (f *fakeInterviews) Remaining(_ context.Context, ownerID string) (int, error) {
	return f.remainingFunc(ownerID)
}
