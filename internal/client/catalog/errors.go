package catalog

import "errors"

var (
	// ErrValidation is returned before any network call when input is invalid.
	ErrValidation = errors.New("validation failed")
	// ErrStaleResponse means a newer refresh or an invalidation superseded the
	// response. Callers treat it as "nothing to do".
	ErrStaleResponse = errors.New("stale catalog response")
	ErrNoURL         = errors.New("file has no download url")
)
