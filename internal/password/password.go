// Package password implements the credential codec: one-way hashing of
// plaintext passwords into a stored form, and verification against it.
//
// The stored form is "sha512$<salt>$<hexdigest>" where the digest is
// sha512(salt + plaintext). The salt is fresh per call, so hashing the
// same plaintext twice yields different stored forms.
package password

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const algorithm = "sha512"

// Hash returns the stored form for a plaintext password
func Hash(plaintext string) string {
	salt := uuid.New()
	saltHex := hex.EncodeToString(salt[:])
	return strings.Join([]string{algorithm, saltHex, digest(saltHex, plaintext)}, "$")
}

// Verify reports whether plaintext matches a stored form. It fails
// closed: a malformed stored form or an unknown algorithm tag is false,
// never an error.
func Verify(plaintext, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}
	algo, salt, saved := parts[0], parts[1], parts[2]
	if algo != algorithm {
		return false
	}
	return digest(salt, plaintext) == saved
}

func digest(salt, plaintext string) string {
	sum := sha512.Sum512([]byte(salt + plaintext))
	return hex.EncodeToString(sum[:])
}
