// Package token generates opaque credentials and public wey ids.
//
// Neither generator guarantees uniqueness on its own; the user directory
// re-checks for collisions and regenerates until a free value is found.
package token

import (
	"crypto/rand"
	mathrand "math/rand"
	"time"

	"wey/internal/core"
)

const (
	credentialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	weyIDAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generate returns prefix followed by length characters drawn independently
// and uniformly from the 62-symbol alphanumeric alphabet.
func Generate(prefix string, length int) string {
	return prefix + randomString(credentialAlphabet, length)
}

// GenerateWeyID returns a fixed-length handle drawn uniformly from the
// uppercase-and-digit alphabet (36 symbols).
func GenerateWeyID() string {
	return randomString(weyIDAlphabet, core.WeyIDLength)
}

// randomString draws each character uniformly via rejection sampling so the
// modulo does not bias toward the low end of the alphabet.
func randomString(alphabet string, length int) string {
	if length <= 0 {
		return ""
	}
	n := len(alphabet)
	// Largest multiple of n that fits in a byte; bytes at or above it are
	// rejected to keep the draw uniform.
	max := byte(256 - 256%n)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return fallbackString(alphabet, length)
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out = append(out, alphabet[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}

// fallbackString is used only if the system entropy source fails.
func fallbackString(alphabet string, length int) string {
	r := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}
