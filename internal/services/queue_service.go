// Package services – QueueService
//
// This file implements QueueService, the intake surface of the candidate
// queue. It validates and normalizes incoming candidates (platform, caption,
// fingerprint fields), computes the normalized caption used by every later
// duplicate check, and persists the candidate in the queued state. It also
// serves paginated listings for the read-only CRUD surface.
//
// The queue state machine itself (scheduled/posted/skipped transitions)
// belongs to the autopilot engine; intake only ever creates queued rows.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/reelpilot/go-autopilot-backend/internal/dedup"
	"github.com/reelpilot/go-autopilot-backend/internal/domain"
	"github.com/reelpilot/go-autopilot-backend/internal/repo"
)

// CandidateInput is the intake payload for a new candidate. Fingerprint
// fields are optional: the classifier degrades gracefully when they are
// absent (see the dedup package).
type CandidateInput struct {
	Platform        string   `json:"platform"         binding:"required"`
	Caption         string   `json:"caption"          binding:"required"`
	EngagementScore int      `json:"engagement_score"`
	VisualHash      string   `json:"visual_hash,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	AudioKey        string   `json:"audio_key,omitempty"`
}

// QueueService owns candidate intake and listing.
type QueueService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewQueueService constructs a QueueService.
func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{DB: db}
}

// Intake validates the payload, computes the normalized caption, and
// persists a queued candidate.
func (s *QueueService) Intake(ctx context.Context, in CandidateInput) (*domain.Candidate, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Intake",
		trace.WithAttributes(attribute.String("platform", in.Platform)),
	)
	defer span.End()

	platform := strings.ToLower(strings.TrimSpace(in.Platform))
	if !domain.ValidPlatform(platform) {
		return nil, ErrInvalidPlatform
	}
	caption := strings.TrimSpace(in.Caption)
	if caption == "" {
		return nil, ErrEmptyCaption
	}

	c := &domain.Candidate{
		ID:                uuid.NewString(),
		Platform:          platform,
		Caption:           caption,
		NormalizedCaption: dedup.NormalizeCaption(caption),
		EngagementScore:   in.EngagementScore,
		VisualHash:        strings.ToLower(strings.TrimSpace(in.VisualHash)),
		DurationSeconds:   in.DurationSeconds,
		AudioKey:          strings.TrimSpace(in.AudioKey),
	}
	if err := repo.CreateCandidate(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a single candidate by ID, or ErrCandidateNotFound.
func (s *QueueService) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("candidate_id", id)),
	)
	defer span.End()

	c, err := repo.GetCandidate(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListPage returns a page of candidates plus the total count for the given
// optional status/platform filters. It applies defaults for invalid
// page/pageSize values.
func (s *QueueService) ListPage(ctx context.Context, status, platform string, page, pageSize int) ([]domain.Candidate, int64, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("status", status),
			attribute.Int("page", page),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountCandidates(ctx, s.DB, status, platform)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Candidate{}, 0, nil
	}

	items, err := repo.ListCandidatesPage(ctx, s.DB, status, platform, offset, pageSize)
	return items, total, err
}
