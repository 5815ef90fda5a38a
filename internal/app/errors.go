package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrRunInProgress = errors.New("a run is already in progress")
	ErrFetch         = errors.New("fetching recent results failed")
)
