package seenstore

import "errors"

// Sentinel kinds for seen-set persistence errors.
var (
	ErrLoad    = errors.New("seen-set load failed")
	ErrPersist = errors.New("seen-set persist failed")
)
