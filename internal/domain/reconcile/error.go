package reconcile

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPassInProgress   = errors.New("reconciliation pass already in progress")
	ErrForbidden        = errors.New("write permission required")
	ErrPartialDeletion  = errors.New("some remote objects were not deleted")
)
