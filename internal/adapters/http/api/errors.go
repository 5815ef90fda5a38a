package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrNoFeed     = errors.New("no feed available yet")
	ErrBadRequest = errors.New("bad request")
)
