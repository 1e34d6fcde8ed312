// Package services defines the business logic for candidate intake, the
// settings snapshot, and the autopilot scheduling engine. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrInvalidPlatform is returned when a candidate names a platform
	// outside the supported set.
	ErrInvalidPlatform = errors.New("platform must be instagram or tiktok")

	// ErrEmptyCaption is returned when intake receives a candidate with a
	// blank caption.
	ErrEmptyCaption = errors.New("caption is empty")

	// ErrCandidateNotFound indicates that the requested candidate does not
	// exist.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrInvalidSettings is returned when a settings update fails
	// validation. The wrapped message names the offending field.
	ErrInvalidSettings = errors.New("invalid settings")
)
