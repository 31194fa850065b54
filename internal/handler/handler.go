package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 32 << 20

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:           http.StatusBadRequest,
	model.ErrCodeValidation:            http.StatusBadRequest,
	model.ErrCodeNotFound:              http.StatusNotFound,
	model.ErrCodeNoChildren:            http.StatusNotFound,
	model.ErrCodeCategoryNotFound:      http.StatusNotFound,
	model.ErrCodeParentNotFound:        http.StatusUnprocessableEntity,
	model.ErrCodeInvalidImagePlacement: http.StatusUnprocessableEntity,
	model.ErrCodeCyclicParent:          http.StatusUnprocessableEntity,
	model.ErrCodeUnknownCategories:     http.StatusUnprocessableEntity,
	model.ErrCodeNoValidCategories:     http.StatusUnprocessableEntity,
	model.ErrCodeHasChildren:           http.StatusConflict,
	model.ErrCodeAlreadyLinked:         http.StatusConflict,
	model.ErrCodeNotLinked:             http.StatusConflict,
	model.ErrCodeConflict:              http.StatusConflict,
	model.ErrCodeUnauthenticated:       http.StatusUnauthorized,
	model.ErrCodeForbidden:             http.StatusForbidden,
	model.ErrCodeRateLimited:           http.StatusTooManyRequests,
	model.ErrCodeUploadFailed:          http.StatusBadGateway,
	model.ErrCodeStoreUnavailable:      http.StatusServiceUnavailable,
}

// writeJSON writes a JSON response with the given status code. The status is
// already sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError writes err as an ErrorResponse. Errors without a domain code
// are reported as internal errors without their text.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected handler error")
		writeJSON(w, logger, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "Internal server error",
		})
		return
	}

	status, ok := statusByCode[domainErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error().Err(domainErr.Unwrap())
	}
	event.Str("code", domainErr.Code).Int("status", status).Msg("request failed")

	writeJSON(w, logger, status, model.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
		Details: domainErr.Details,
	})
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health requests.
func Health(p Pinger, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Ping(r.Context()); err != nil {
			logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
