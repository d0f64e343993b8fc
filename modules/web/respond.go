package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studiosix/photostudio/pkg/account"
	"github.com/studiosix/photostudio/pkg/billing"
	"github.com/studiosix/photostudio/pkg/credits"
	"github.com/studiosix/photostudio/pkg/file"
	"github.com/studiosix/photostudio/pkg/handoff"
	"github.com/studiosix/photostudio/pkg/studio"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (m *Module) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Error("failed to encode response", "error", err)
	}
}

// respondError maps domain sentinels to HTTP statuses. Unknown errors are
// logged and reported as an opaque 500 so internals never leak.
func (m *Module) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		m.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		m.respond(w, status, errorResponse{Error: "internal server error"})
		return
	}
	m.respond(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrWeakPassword):
		return http.StatusBadRequest

	case errors.Is(err, credits.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, credits.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, credits.ErrUnknownTier):
		return http.StatusBadRequest

	case errors.Is(err, studio.ErrEmptyImage),
		errors.Is(err, studio.ErrUnsupportedImage),
		errors.Is(err, studio.ErrUnknownFlow):
		return http.StatusBadRequest
	case errors.Is(err, studio.ErrGenerationFailed):
		return http.StatusBadGateway

	case errors.Is(err, handoff.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, handoff.ErrTokenAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, handoff.ErrEmptyArtifact):
		return http.StatusBadRequest

	case errors.Is(err, billing.ErrEventVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrUnknownPriceRef):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrCustomerNotFound):
		return http.StatusNotFound

	case errors.Is(err, file.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, file.ErrInvalidPath):
		return http.StatusBadRequest

	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("authentication required")
)
