// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to
// HTTP responses (via the `fail()` helper in this package). These codes give
// clients a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes (bad_request, not_found, conflict) mirror common HTTP
//     status semantics.
//   - Domain-specific codes are reserved for business errors that cannot be
//     conveyed by status alone.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeIntakeFailed     = "intake_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeRefillFailed     = "refill_failed"
	ErrCodePostDueFailed    = "post_due_failed"
	ErrCodeClassifyFailed   = "classify_failed"
	ErrCodeSettingsInvalid  = "settings_invalid"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
