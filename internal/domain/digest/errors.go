package digest

import "errors"

// Sentinel kinds for digest errors.
var (
	ErrNotEncodable = errors.New("value not encodable as canonical JSON")
)
