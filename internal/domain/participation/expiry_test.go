package participation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/intervue/intervue-api/internal/domain/model"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		iv        *model.Interview
		expired   bool
		needWrite bool
	}{
		{name: "nil interview", iv: nil},
		{name: "no deadline", iv: &model.Interview{Status: model.InterviewStatusCreated}},
		{name: "future deadline", iv: &model.Interview{Status: model.InterviewStatusCreated, ValidateTill: &future}},
		{name: "deadline equal to now", iv: &model.Interview{Status: model.InterviewStatusScheduled, ValidateTill: &now}},
		{
			name:      "past deadline not yet marked",
			iv:        &model.Interview{Status: model.InterviewStatusCreated, ValidateTill: &past},
			expired:   true,
			needWrite: true,
		},
		{
			name:    "past deadline already marked",
			iv:      &model.Interview{Status: model.InterviewStatusExpired, ValidateTill: &past},
			expired: true,
		},
		{
			name:    "marked expired without deadline",
			iv:      &model.Interview{Status: model.InterviewStatusExpired},
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, IsExpired(tt.iv, now))
			assert.Equal(t, tt.needWrite, NeedsExpiryWrite(tt.iv, now))
		})
	}
}
