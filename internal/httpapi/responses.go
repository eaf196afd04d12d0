package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"softwareprosweb/internal/domain"
	"softwareprosweb/internal/service"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Rate-limit hints, present only on 429 responses.
	RetryAfterMS int64 `json:"retry_after_ms,omitempty"`
	Remaining    *int  `json:"remaining,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteRateLimited(w http.ResponseWriter, retryAfter time.Duration, remaining int) {
	if retryAfter < 0 {
		retryAfter = 0
	}
	WriteJSON(w, http.StatusTooManyRequests, errorEnvelope{Error: apiError{
		Code:         "rate_limited",
		Message:      "too many requests",
		RetryAfterMS: retryAfter.Milliseconds(),
		Remaining:    &remaining,
	}})
}

// WriteDomainError maps service-layer sentinels to API responses. A
// store outage reads as 503 so callers can distinguish it from bad
// credentials or a missing row.
func WriteDomainError(w http.ResponseWriter, err error) {
	var rle *service.RateLimitedError
	if errors.As(err, &rle) {
		WriteRateLimited(w, rle.RetryAfter, rle.Remaining)
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "email_taken", "email already taken")
	case errors.Is(err, domain.ErrSlugTaken):
		WriteError(w, http.StatusConflict, "slug_taken", "slug already taken")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrUserDisabled):
		// A distinct code, unlike invalid_credentials, names an account.
		// Login only reports it after the credentials checked out, so
		// the owner learns their account is off without outsiders being
		// able to confirm it exists.
		WriteError(w, http.StatusForbidden, "user_disabled", "user is disabled")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
	case errors.Is(err, domain.ErrStoreUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
