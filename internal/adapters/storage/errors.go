package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound   = errors.New("document not found")
	ErrReadState  = errors.New("read persisted state failed")
	ErrWriteState = errors.New("write persisted state failed")
)
