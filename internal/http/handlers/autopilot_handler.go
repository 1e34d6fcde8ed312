// Autopilot HTTP handlers.
//
// This file exposes the operator/diagnostic surface of the scheduling
// engine:
//   - POST /autopilot/refill    (manual backlog top-up)
//   - POST /autopilot/post-due  (manual pacing pass)
//   - POST /autopilot/tick      (manual full tick, lock semantics included)
//   - POST /autopilot/classify  (dry-run duplicate verdict)
//   - GET  /autopilot/status    (scheduler health snapshot)
//
// The manual triggers run exactly the same code paths as the periodic
// loop; refill/post-due skip the global lock the way an operator console
// would, while tick goes through it.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reelpilot/go-autopilot-backend/internal/dedup"
	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/services"
)

// AutopilotService defines the engine operations consumed by HTTP handlers.
type AutopilotService interface {
	// Refill tops the scheduled backlog up to targetBacklog (settings
	// default when <= 0).
	Refill(ctx context.Context, targetBacklog int) (services.RefillResult, error)
	// PostDue commits due scheduled candidates, subject to pacing.
	PostDue(ctx context.Context) (services.PostResult, error)
	// RunTick runs one full tick under the global scheduler lock.
	RunTick(ctx context.Context) services.TickResult
	// Classify returns the duplicate verdict for a candidate against its
	// platform's current recency window.
	Classify(ctx context.Context, c domain.Candidate) (dedup.Verdict, error)
	// Status returns the scheduler health snapshot.
	Status() services.SchedulerStatus
}

// refillRequest is the optional body for POST /autopilot/refill.
type refillRequest struct {
	TargetBacklog int `json:"target_backlog"`
}

// classifyRequest is the body for POST /autopilot/classify. It mirrors the
// intake payload: the verdict is computed without persisting anything.
type classifyRequest struct {
	Platform        string   `json:"platform" binding:"required"`
	Caption         string   `json:"caption"`
	VisualHash      string   `json:"visual_hash,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

// Refill handles POST /autopilot/refill.
func (h *Handlers) Refill(c *gin.Context) {
	var req refillRequest
	// Body is optional; a missing/empty body means "use settings default".
	_ = c.ShouldBindJSON(&req)

	res, err := h.autopilotSvc.Refill(c.Request.Context(), req.TargetBacklog)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRefillFailed, "refill failed")
		return
	}
	ok(c, http.StatusOK, res)
}

// PostDue handles POST /autopilot/post-due.
func (h *Handlers) PostDue(c *gin.Context) {
	res, err := h.autopilotSvc.PostDue(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodePostDueFailed, "post-due pass failed")
		return
	}
	ok(c, http.StatusOK, res)
}

// Tick handles POST /autopilot/tick. The result reports ran=false when the
// global scheduler lock was held elsewhere (the tick was a no-op).
func (h *Handlers) Tick(c *gin.Context) {
	ok(c, http.StatusOK, h.autopilotSvc.RunTick(c.Request.Context()))
}

// Classify handles POST /autopilot/classify: a read-only diagnostic that
// reports whether the supplied content would currently be considered a
// near duplicate, and why.
func (h *Handlers) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !domain.ValidPlatform(platform) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "platform must be instagram or tiktok")
		return
	}

	cand := domain.Candidate{
		Platform:          platform,
		Caption:           req.Caption,
		NormalizedCaption: dedup.NormalizeCaption(req.Caption),
		VisualHash:        strings.ToLower(strings.TrimSpace(req.VisualHash)),
		DurationSeconds:   req.DurationSeconds,
	}
	v, err := h.autopilotSvc.Classify(c.Request.Context(), cand)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeClassifyFailed, "classification failed")
		return
	}
	ok(c, http.StatusOK, v)
}

// Status handles GET /autopilot/status.
func (h *Handlers) Status(c *gin.Context) {
	ok(c, http.StatusOK, h.autopilotSvc.Status())
}
