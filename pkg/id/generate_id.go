package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

// Every participant, currency and collateral registry in the ledger is
// addressed by the same 32-char lowercase hex form, whether minted here or
// derived from a consent public key.

var re = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a fresh random identifier in the canonical form.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsID32 reports whether s is a well-formed identifier.
func IsID32(s string) bool { return re.MatchString(s) }
