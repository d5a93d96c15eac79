package dataprocessing

import "errors"

// ErrInvalidInput is returned when a table has no rows at all.
var ErrInvalidInput = errors.New("invalid input")
