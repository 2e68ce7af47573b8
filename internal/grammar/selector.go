package grammar

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Selector returns the 4-byte ABI selector of a signature as 0x-prefixed
// lowercase hex. Error selectors are computed exactly like function
// selectors: the first four bytes of the Keccak-256 digest of the canonical
// signature.
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// NormalizeSelector validates a textual selector and returns it in the
// canonical 0x-prefixed lowercase form. The 0x prefix is optional on input.
func NormalizeSelector(s string) (string, error) {
	hx := strings.ToLower(strings.TrimSpace(s))
	hx = strings.TrimPrefix(hx, "0x")
	if len(hx) != 8 {
		return "", fmt.Errorf("selector %q must be 4 bytes of hex", s)
	}
	if _, err := hex.DecodeString(hx); err != nil {
		return "", fmt.Errorf("selector %q is not valid hex", s)
	}
	return "0x" + hx, nil
}
