package core

import "errors"

// Common errors.
var (
	ErrNotFound = errors.New("assessment not found")
	ErrReadOnly = errors.New("repository is in read-only mode")
)
