package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrInvalidKind = errors.New("invalid transaction kind")
)
