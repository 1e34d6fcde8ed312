// Candidate HTTP handlers.
//
// This file exposes REST endpoints for candidate intake and listing:
//   - POST /candidates      (intake)
//   - GET  /candidates      (list, paginated, filterable by status/platform)
//   - GET  /candidates/:id  (single lookup)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. All scheduling
// decisions stay in the autopilot engine.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/services"
	"github.com/reelpilot/go-autopilot-backend/internal/utils"
)

// QueueService defines candidate intake and listing operations consumed by
// HTTP handlers. Implementations should be safe for concurrent use and must
// honor the provided context for cancellation and timeouts.
type QueueService interface {
	// Intake validates and persists a new queued candidate.
	Intake(ctx context.Context, in services.CandidateInput) (*domain.Candidate, error)
	// Get returns a single candidate, or services.ErrCandidateNotFound.
	Get(ctx context.Context, id string) (*domain.Candidate, error)
	// ListPage returns a page of candidates and the total count.
	ListPage(ctx context.Context, status, platform string, page, pageSize int) ([]domain.Candidate, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for candidates, autopilot operations,
// settings, and events. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	queueSvc     QueueService
	autopilotSvc AutopilotService
	settingsSvc  SettingsService
	events       EventSource
}

// New constructs and returns a Handlers instance bound to the given services.
func New(queueSvc QueueService, autopilotSvc AutopilotService, settingsSvc SettingsService, events EventSource) *Handlers {
	return &Handlers{queueSvc: queueSvc, autopilotSvc: autopilotSvc, settingsSvc: settingsSvc, events: events}
}

// CandidatePage is the paginated list envelope returned by GET /candidates.
type CandidatePage struct {
	Items    []domain.Candidate `json:"items"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int64              `json:"total"`
}

// CreateCandidate handles POST /candidates.
//
// Responses:
//   - 201 with the created candidate (status "queued")
//   - 400 on validation failure
//   - 500 on storage failure
func (h *Handlers) CreateCandidate(c *gin.Context) {
	var in services.CandidateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	created, err := h.queueSvc.Intake(c.Request.Context(), in)
	switch {
	case errors.Is(err, services.ErrInvalidPlatform), errors.Is(err, services.ErrEmptyCaption):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeIntakeFailed, "could not create candidate")
		return
	}
	ok(c, http.StatusCreated, created)
}

// GetCandidate handles GET /candidates/:id.
func (h *Handlers) GetCandidate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	cand, err := h.queueSvc.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrCandidateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "candidate not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load candidate")
		return
	}
	ok(c, http.StatusOK, cand)
}

// ListCandidates handles GET /candidates with optional status, platform,
// page, and page_size query parameters.
func (h *Handlers) ListCandidates(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	platform := strings.TrimSpace(c.Query("platform"))
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 20)

	items, total, err := h.queueSvc.ListPage(c.Request.Context(), status, platform, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list candidates")
		return
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	ok(c, http.StatusOK, CandidatePage{Items: items, Page: page, PageSize: pageSize, Total: total})
}
