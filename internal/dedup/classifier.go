// Classifier: combines the fingerprint primitives over a recency window to
// produce a duplicate/not-duplicate verdict with a stable reason code.
package dedup

import (
	"math"

	"github.com/reelpilot/go-autopilot-backend/internal/domain"
)

// Fixed policy thresholds. These are deliberately constants, not settings:
// they encode what "near duplicate" means, which should not drift per
// deployment the way pacing caps do.
const (
	// VisualHashMaxBits is the maximum Hamming distance between two visual
	// hashes still considered the same footage.
	VisualHashMaxBits = 8
	// CaptionSimilarityThreshold flags a caption-only near duplicate.
	CaptionSimilarityThreshold = 0.92
	// CaptionDurationSimilarityThreshold is the looser caption threshold
	// applied when the clip durations also agree.
	CaptionDurationSimilarityThreshold = 0.85
	// DurationDeltaSeconds is the maximum duration difference, in seconds,
	// for two clips to count as "the same length".
	DurationDeltaSeconds = 1.0
)

// Stable machine-readable reason codes carried on skip events and returned
// by the diagnostic classify endpoint.
const (
	ReasonDuplicateVisual          = "duplicate_visual"
	ReasonDuplicateCaption         = "duplicate_caption"
	ReasonDuplicateCaptionDuration = "duplicate_caption_duration"
)

// Verdict is the outcome of classifying one candidate against a recency
// window. When Duplicate is true, Reason holds the rule that fired and
// MatchedID the posted record closest in time that triggered it.
type Verdict struct {
	Duplicate bool    `json:"duplicate"`
	Reason    string  `json:"reason,omitempty"`
	MatchedID string  `json:"matched_id,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// Classify evaluates a candidate against a window of posted records for the
// same platform, ordered most-recent first, short-circuiting on the first
// match so the closest-in-time near duplicate is the one reported.
//
// Per record, rules fire in priority order:
//  1. Hamming(candidate.VisualHash, record.VisualHash) ≤ VisualHashMaxBits
//  2. cosine ≥ CaptionSimilarityThreshold
//  3. cosine ≥ CaptionDurationSimilarityThreshold AND both durations are
//     present AND |Δduration| ≤ DurationDeltaSeconds
//
// Absent fingerprint fields are handled by the primitives' defaults
// (maximal distance / zero similarity) rather than raising: a candidate
// without a visual hash can still be caught by the caption rules, but never
// falsely by rule 1.
//
// The classifier is invoked twice per candidate in the full pipeline, at
// refill time and again at commit time, because new posted records may have
// appeared in between. The second check is mandatory, not redundant.
func Classify(c domain.Candidate, window []domain.PostedRecord) Verdict {
	for _, rec := range window {
		if d := HammingDistance(c.VisualHash, rec.VisualHash); d <= VisualHashMaxBits {
			return Verdict{Duplicate: true, Reason: ReasonDuplicateVisual, MatchedID: rec.ID, Score: float64(d)}
		}

		sim := TokenCosineSimilarity(c.NormalizedCaption, rec.NormalizedCaption)
		if sim >= CaptionSimilarityThreshold {
			return Verdict{Duplicate: true, Reason: ReasonDuplicateCaption, MatchedID: rec.ID, Score: sim}
		}
		if sim >= CaptionDurationSimilarityThreshold && durationsClose(c.DurationSeconds, rec.DurationSeconds) {
			return Verdict{Duplicate: true, Reason: ReasonDuplicateCaptionDuration, MatchedID: rec.ID, Score: sim}
		}
	}
	return Verdict{}
}

// durationsClose reports whether both durations are present and within
// DurationDeltaSeconds of each other.
func durationsClose(a, b *float64) bool {
	if a == nil || b == nil {
		return false
	}
	return math.Abs(*a-*b) <= DurationDeltaSeconds
}
