package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AttemptStatus
		want     bool
	}{
		{AttemptStatusPending, AttemptStatusInProgress, true},
		{AttemptStatusInProgress, AttemptStatusCompleted, true},
		{AttemptStatusPending, AttemptStatusCompleted, false},
		{AttemptStatusInProgress, AttemptStatusPending, false},
		{AttemptStatusCompleted, AttemptStatusPending, false},
		{AttemptStatusCompleted, AttemptStatusInProgress, false},
		{AttemptStatusPending, AttemptStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAttemptStatus_IsOpen(t *testing.T) {
	assert.True(t, AttemptStatusPending.IsOpen())
	assert.True(t, AttemptStatusInProgress.IsOpen())
	assert.False(t, AttemptStatusCompleted.IsOpen())
	assert.False(t, AttemptStatus("bogus").Valid())
}

func TestUpsertUserRequest_Validate(t *testing.T) {
	req := UpsertUserRequest{Subject: "  sub-1 ", Email: " a@example.com "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "sub-1", req.Subject)
	assert.Equal(t, "a@example.com", req.Email)

	assert.Error(t, (&UpsertUserRequest{}).Validate())
}
