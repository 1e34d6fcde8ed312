// Events HTTP handler: GET /events returns the most recent engine events
// (scheduled, posted, skipped, tick, error) from the in-memory ring,
// newest first.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reelpilot/go-autopilot-backend/internal/events"
	"github.com/reelpilot/go-autopilot-backend/internal/utils"
)

// EventSource exposes read access to the engine's recent-event buffer.
type EventSource interface {
	// Recent returns up to limit events, newest first.
	Recent(limit int) []events.Event
}

// EventsResponse wraps the recent events list.
type EventsResponse struct {
	Events []events.Event `json:"events"`
}

// ListEvents handles GET /events with optional limit and type query
// parameters. Events are held in memory only and reset on restart.
func (h *Handlers) ListEvents(c *gin.Context) {
	limit := utils.ClampLimit(c.Query("limit"), 100, 1000)
	typ := strings.TrimSpace(c.Query("type"))

	recent := h.events.Recent(limit)
	if typ != "" {
		filtered := recent[:0:0]
		for _, ev := range recent {
			if ev.Type == typ {
				filtered = append(filtered, ev)
			}
		}
		recent = filtered
	}
	if recent == nil {
		recent = []events.Event{}
	}
	ok(c, http.StatusOK, EventsResponse{Events: recent})
}
