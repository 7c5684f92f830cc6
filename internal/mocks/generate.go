// Package mocks provides gomock implementations of the internal/core repository ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	attempts := mocks.NewMockAttemptRepository(ctrl)
//	attempts.EXPECT().ListByInterviewAndUser(gomock.Any(), ivID, userID).Return(nil, nil)
package mocks

// UserRepository: GetBySubject, GetByID, UpsertBySubject
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/intervue/intervue-api/internal/core UserRepository

// InterviewRepository: Create, GetByID, MarkExpired, CountCreatedSince, ListByOwner
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=interview_repository_mock.go github.com/intervue/intervue-api/internal/core InterviewRepository

// InterviewExpiryRepository: ExpireOverdue
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=interview_expiry_repository_mock.go github.com/intervue/intervue-api/internal/core InterviewExpiryRepository

// AttemptRepository: ListByInterviewAndUser, CreatePending, GetByID, Transition
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=attempt_repository_mock.go github.com/intervue/intervue-api/internal/core AttemptRepository
