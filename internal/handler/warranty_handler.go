package handler

import (
	"net/http"
	"strconv"

	"perfume-store/internal/model"
	"perfume-store/internal/service"

	"github.com/rs/zerolog"
)

// defaultExpiryWindowDays is used when the query omits the days parameter.
const defaultExpiryWindowDays = 7

// WarrantyHandler handles warranty-related HTTP requests.
type WarrantyHandler struct {
	service service.WarrantyService
	logger  zerolog.Logger
}

// NewWarrantyHandler creates a new warranty handler.
func NewWarrantyHandler(service service.WarrantyService, logger zerolog.Logger) *WarrantyHandler {
	return &WarrantyHandler{
		service: service,
		logger:  logger.With().Str("handler", "warranty").Logger(),
	}
}

// ExpiringSoon handles GET /api/warranties/expiring?days=N requests.
func (h *WarrantyHandler) ExpiringSoon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	days := defaultExpiryWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "days must be an integer", h.logger)
			return
		}
		days = parsed
	}

	warranties, err := h.service.FindExpiringSoon(r.Context(), days)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"warranties": warranties,
		"count":      len(warranties),
	})
}
