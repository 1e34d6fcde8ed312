// Settings HTTP handlers.
//
// Exposes the single autopilot settings row:
//   - GET /settings  (current effective settings, defaults if never saved)
//   - PUT /settings  (validated full replacement)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/services"
)

// SettingsService defines settings retrieval and update operations consumed
// by HTTP handlers.
type SettingsService interface {
	// Get returns the current settings, falling back to defaults when no
	// row has been saved yet.
	Get(ctx context.Context) (domain.Settings, error)
	// Update validates and persists a full settings replacement.
	Update(ctx context.Context, s domain.Settings) (domain.Settings, error)
}

// GetSettings handles GET /settings.
func (h *Handlers) GetSettings(c *gin.Context) {
	s, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load settings")
		return
	}
	ok(c, http.StatusOK, s)
}

// UpdateSettings handles PUT /settings. The payload is a full settings
// document; invalid combinations (e.g. daily limit below hourly limit,
// malformed burst window times) are rejected with 400.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var s domain.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	saved, err := h.settingsSvc.Update(c.Request.Context(), s)
	switch {
	case errors.Is(err, services.ErrInvalidSettings):
		fail(c, http.StatusBadRequest, ErrCodeSettingsInvalid, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save settings")
		return
	}
	ok(c, http.StatusOK, saved)
}
