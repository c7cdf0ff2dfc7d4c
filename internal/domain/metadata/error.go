package metadata

import "errors"

var (
	ErrParse    = errors.New("malformed sidecar")
	ErrFetch    = errors.New("sidecar fetch failed")
	ErrTooLarge = errors.New("sidecar exceeds size limit")
)
