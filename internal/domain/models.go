// Package domain defines the persistence models for repost candidates,
// posted records, locks, and settings. These types are mapped with GORM and
// form the core data layer of the autopilot application.
package domain

import (
	"time"
)

// Supported target platforms.
const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
)

// Candidate lifecycle states. A candidate only ever moves forward:
//
//	queued → scheduled → posted
//	queued|scheduled → skipped
//
// StatusFailed is a reserved terminal state; the scheduling engine never
// produces it itself, but operators and future delivery integrations may.
const (
	StatusQueued    = "queued"
	StatusScheduled = "scheduled"
	StatusPosted    = "posted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ValidPlatform reports whether p names a supported platform.
func ValidPlatform(p string) bool {
	return p == PlatformInstagram || p == PlatformTikTok
}

// TerminalStatus reports whether s is one of the terminal candidate states.
// No transition ever leaves a terminal state.
func TerminalStatus(s string) bool {
	return s == StatusPosted || s == StatusSkipped || s == StatusFailed
}

// Candidate represents one postable unit of content moving through the
// autopilot queue. Candidates are created at intake and retained forever
// for audit/history; they are mutated only through the state-machine
// transitions implemented in the repo layer.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Platform: target platform ("instagram" or "tiktok"); indexed together
//     with Status for refill/pacing range queries.
//   - Caption: original caption text as ingested.
//   - NormalizedCaption: caption after normalization (see dedup package);
//     computed once at intake and reused by every duplicate check.
//   - EngagementScore: engagement metric of the source post; refill promotes
//     high-engagement candidates first.
//   - VisualHash: optional fixed-width hex perceptual hash of the video.
//   - DurationSeconds: optional clip duration; nil when media analysis did
//     not produce one.
//   - AudioKey: optional opaque identifier of the audio track.
//   - Status: current lifecycle state (see constants above).
//   - ScheduledAt: set exactly once, on the queued → scheduled transition.
//   - PostedAt: set atomically with the → posted transition.
type Candidate struct {
	ID                string     `json:"id"                 gorm:"type:char(36);primaryKey"`
	Platform          string     `json:"platform"           gorm:"type:varchar(16);not null;index:idx_candidates_platform_status,priority:1;check:platform IN ('instagram','tiktok')"`
	Caption           string     `json:"caption"            gorm:"type:text;not null"`
	NormalizedCaption string     `json:"normalized_caption" gorm:"type:text;not null"`
	EngagementScore   int        `json:"engagement_score"   gorm:"not null;default:0;index"`
	VisualHash        string     `json:"visual_hash,omitempty"      gorm:"type:varchar(64)"`
	DurationSeconds   *float64   `json:"duration_seconds,omitempty"`
	AudioKey          string     `json:"audio_key,omitempty"        gorm:"type:varchar(128)"`
	Status            string     `json:"status"             gorm:"type:varchar(16);not null;default:'queued';index:idx_candidates_platform_status,priority:2;index:idx_candidates_status_scheduled,priority:1;check:status IN ('queued','scheduled','posted','skipped','failed')"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"     gorm:"index:idx_candidates_status_scheduled,priority:2"`
	PostedAt          *time.Time `json:"posted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string { return "candidates" }

// PostedRecord is an immutable append-only fact written exactly once per
// successful post. It is the read-only input to the duplicate classifier's
// recency window and is never updated or deleted by the core (retention is
// an external concern).
type PostedRecord struct {
	ID                string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	CandidateID       string    `json:"candidate_id"       gorm:"type:char(36);not null;index"`
	Platform          string    `json:"platform"           gorm:"type:varchar(16);not null;index:idx_posted_platform_at,priority:1"`
	PostedAt          time.Time `json:"posted_at"          gorm:"not null;index:idx_posted_platform_at,priority:2"`
	VisualHash        string    `json:"visual_hash,omitempty"      gorm:"type:varchar(64)"`
	NormalizedCaption string    `json:"normalized_caption" gorm:"type:text;not null"`
	DurationSeconds   *float64  `json:"duration_seconds,omitempty"`
	AudioKey          string    `json:"audio_key,omitempty"        gorm:"type:varchar(128)"`
}

// TableName returns the database table name for PostedRecord.
func (PostedRecord) TableName() string { return "posted_records" }

// Lock is a TTL-bounded, create-only record providing mutual exclusion.
// A lock exists iff a create-with-unique-key succeeded and ExpiresAt has
// not passed. There is no explicit release: locks self-expire, so a crashed
// holder can never leave a permanent lock behind.
//
// Two logical uses share the mechanism: key "scheduler" excludes concurrent
// tick bodies system-wide, and key "post:<candidateID>" claims a single
// candidate for posting.
type Lock struct {
	Key       string    `json:"key"        gorm:"type:varchar(64);primaryKey"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Lock.
func (Lock) TableName() string { return "locks" }

// Settings is the single-row configuration snapshot consumed by the
// autopilot engine. The core reads it once per refill/pacing invocation and
// never writes it; updates arrive through the settings endpoint.
//
// BurstStart/BurstEnd are local wall-clock times in zero-padded "HH:mm"
// form. The burst window may wrap past midnight (e.g. 22:00 → 02:00).
type Settings struct {
	ID                int       `json:"-"                    gorm:"primaryKey"`
	HourlyLimit       int       `json:"hourly_limit"         gorm:"not null;default:3"`
	DailyLimit        int       `json:"daily_limit"          gorm:"not null;default:20"`
	MinEngagement     int       `json:"min_engagement"       gorm:"not null;default:500"`
	RecencyWindow     int       `json:"recency_window"       gorm:"not null;default:30"`
	TargetBacklog     int       `json:"target_backlog"       gorm:"not null;default:5"`
	BurstEnabled      bool      `json:"burst_enabled"        gorm:"not null;default:false"`
	BurstStart        string    `json:"burst_start"          gorm:"type:varchar(5);not null;default:'18:00'"`
	BurstEnd          string    `json:"burst_end"            gorm:"type:varchar(5);not null;default:'22:00'"`
	BurstPostsPerHour int       `json:"burst_posts_per_hour" gorm:"not null;default:6"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for Settings.
func (Settings) TableName() string { return "settings" }

// DefaultSettings returns the snapshot used until an operator saves one.
func DefaultSettings() Settings {
	return Settings{
		ID:                1,
		HourlyLimit:       3,
		DailyLimit:        20,
		MinEngagement:     500,
		RecencyWindow:     30,
		TargetBacklog:     5,
		BurstEnabled:      false,
		BurstStart:        "18:00",
		BurstEnd:          "22:00",
		BurstPostsPerHour: 6,
	}
}
