package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrExtraction           = errors.New("extraction failed")
	ErrUnresolvedDependency = errors.New("unresolved stage dependency")
	ErrTimeout              = errors.New("run timeout exceeded")
	ErrCancelled            = errors.New("run cancelled")
	ErrSynthesis            = errors.New("report synthesis failed")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrInvalidConfig        = errors.New("invalid configuration")
)
