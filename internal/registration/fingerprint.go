package registration

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short stable identifier for a submitter's email,
// suitable for logs in place of the address itself.
func Fingerprint(email string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:6])
}
