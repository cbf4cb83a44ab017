package stringtuner

import "errors"

var (
	// ErrInvalidConfiguration is returned at construction time for static misconfiguration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrContractViolation means the capture provider handed over a malformed spectrum.
	ErrContractViolation = errors.New("spectrum contract violation")

	// ErrNoAudio is returned when a decoded source holds no samples.
	ErrNoAudio = errors.New("audio source has no samples")

	// ErrSessionNotFound is returned for unknown stored session IDs.
	ErrSessionNotFound = errors.New("session not found")

	ErrSessionClosed = errors.New("session closed")
)
