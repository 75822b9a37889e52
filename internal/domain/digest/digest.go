// Package digest computes canonical SHA-256 digests over JSON documents.
//
// Canonical form is the JSON encoding with all object keys sorted, so two
// logically equal documents always digest to the same value regardless of
// struct field order.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Canonical returns the hex-encoded SHA-256 of the canonical JSON encoding
// of v. Values that cannot be marshaled (channels, cycles) yield an error.
func Canonical(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotEncodable, err)
	}

	// Round-trip through generic maps so json.Marshal emits keys in sorted
	// order. UseNumber keeps integer literals intact instead of reformatting
	// them through float64.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotEncodable, err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotEncodable, err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Equal compares two digests byte for byte. Empty digests never match.
func Equal(a, b string) bool {
	return a != "" && a == b
}
