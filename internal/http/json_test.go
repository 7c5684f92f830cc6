package httpx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/intervue/intervue-api/internal/errors"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		ok := DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`)), &p)
		assert.True(t, ok)
		assert.Equal(t, "a", p.Name)
	})

	t.Run("empty body is an error unless optional", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		assert.False(t, DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", nil), &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		assert.True(t, DecodeOptionalJSON(rec, httptest.NewRequest(http.MethodPost, "/", nil), &p))
	})

	t.Run("too large", func(t *testing.T) {
		var p payload
		big := `{"name":"` + strings.Repeat("x", maxJSONBody) + `"}`
		rec := httptest.NewRecorder()
		assert.False(t, DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)), &p))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		wantCode string
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest, "validation_failed"},
		{apperrors.NotFound("gone"), http.StatusNotFound, "not_found"},
		{apperrors.Conflict("dup"), http.StatusConflict, "conflict"},
		{apperrors.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{apperrors.QuotaExceeded("out"), http.StatusPaymentRequired, "quota_exceeded"},
		{fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{fmt.Errorf("wrap: %w", apperrors.NotFound("gone")), http.StatusNotFound, "not_found"},
		{assert.AnError, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.wantCode, code, tt.err.Error())
	}
}
