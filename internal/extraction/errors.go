package extraction

import "errors"

var (
	// ErrNotConfigured is returned when a collaborator is called without its API key.
	ErrNotConfigured = errors.New("extraction service not configured")

	// ErrExtractionFailed wraps failures reported by a remote extraction service.
	ErrExtractionFailed = errors.New("extraction failed")
)
