package remote

import "errors"

var (
	ErrTransport     = errors.New("remote store transport error")
	ErrMarkerStalled = errors.New("listing marker did not advance")
)
