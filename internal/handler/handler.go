package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"perfume-store/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Response is already partially written, nothing to do
		return
	}
}

// writeError writes a coded error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service-layer error onto an HTTP response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		logger.Warn().Str("field", vErr.Field).Str("error", vErr.Message).Msg("request rejected")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeMissingField,
			Message: vErr.Message,
			Field:   vErr.Field,
		})
		return
	}

	var tErr *model.InvalidTransitionError
	if errors.As(err, &tErr) {
		writeError(w, http.StatusConflict, model.ErrCodeInvalidTransition, tErr.Error(), logger)
		return
	}

	var dErr *model.DomainError
	if errors.As(err, &dErr) {
		writeError(w, domainStatus(dErr.Code), dErr.Code, dErr.Message, logger)
		return
	}

	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeOrderNotFound, model.ErrCodeWarrantyNotFound:
		return http.StatusNotFound
	case model.ErrCodeCouponUsed, model.ErrCodeCustomerConflict:
		return http.StatusConflict
	case model.ErrCodeCouponExpired, model.ErrCodeInvalidQuantity, model.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
