package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrNoStore = errors.New("no report store configured")
)
