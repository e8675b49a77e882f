// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrStoreUnavailable indicates that the storage could not complete the unit of work.
	// Nothing was committed, so the request is safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
