package httpx

import (
	"net/http"

	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

// WriteServiceError maps a service-layer error onto an HTTP response using
// its application error code. Unclassified errors become a 500 with a
// generic error code so internals never leak.
func WriteServiceError(w http.ResponseWriter, err error) {
	code, status := classifyServiceError(err)
	WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: err})
}

func classifyServiceError(err error) (string, int) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return "not_found", http.StatusNotFound
	case apperrors.ErrCodeValidation:
		return "validation_failed", http.StatusBadRequest
	case apperrors.ErrCodeConflict:
		return "conflict", http.StatusConflict
	case apperrors.ErrCodeForeignKey:
		return "invalid_reference", http.StatusBadRequest
	case apperrors.ErrCodeGone:
		return "gone", http.StatusGone
	default:
		return "internal_error", http.StatusInternalServerError
	}
}
