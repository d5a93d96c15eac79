package services

import "errors"

// Report service errors
var (
	ErrNoDocument  = errors.New("no document provided")
	ErrEmptyText   = errors.New("document text is empty")
	ErrInvalidMode = errors.New("invalid extraction mode")
	ErrNoStore     = errors.New("upload store not configured")
)
