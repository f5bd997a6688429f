package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/response"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr),
		errors.Is(err, apperrors.ErrInvalidFundCode),
		errors.Is(err, apperrors.ErrInvalidDays),
		errors.Is(err, apperrors.ErrInvalidMode),
		errors.Is(err, apperrors.ErrEmptyCodes),
		errors.Is(err, apperrors.ErrTooManyCodes):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnavailable), errors.Is(err, apperrors.ErrMalformedPayload):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrBoardNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status statusFor assigns to it.
// message is used for unexpected errors; expected ones report their own text.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		message = rootMessage(err)
	}
	response.RespondError(w, status, message, err.Error())
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperrors.ErrInvalidFundCode,
		apperrors.ErrInvalidDays,
		apperrors.ErrInvalidMode,
		apperrors.ErrEmptyCodes,
		apperrors.ErrTooManyCodes,
		apperrors.ErrNoData,
		apperrors.ErrUnavailable,
		apperrors.ErrMalformedPayload,
		apperrors.ErrBoardNotReady,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "validation failed"
}
