package itf

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes SHA256(domain + 0x00 + canonical(v)) as lowercase hex.
// The null byte keeps the domain and data boundary unambiguous, and the
// version suffix on a domain allows the encoding to change later.
func Hash(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
