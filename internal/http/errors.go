package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/intervue/intervue-api/internal/errors"
)

// errInternal is what clients see for failures we do not classify.
var errInternal = errors.New("internal server error")

// statusFor maps an AppError code to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, "validation_failed"
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, "not_found"
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		return http.StatusConflict, "conflict"
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden, "forbidden"
	case apperrors.ErrCodeQuotaExceeded:
		return http.StatusPaymentRequired, "quota_exceeded"
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeServiceError renders err from a service call. Unclassified errors are logged
// and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code, errCode := statusFor(err)
	if code >= http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", code, "error", err)
		WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: errInternal})
		return
	}
	WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err, Field: apperrors.GetField(err)})
}
