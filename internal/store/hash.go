package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// artifactDomain is the domain prefix for content-addressed artifact
// ids. The version suffix enables future algorithm migration.
const artifactDomain = "skein/artifact/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash computes the content-addressed hash of a wire document.
// The hash is stable across whitespace and key-order variations of
// the same document, since it is taken over the canonical form.
func ContentHash(text string) (string, error) {
	canonical, err := canonicalizeDocument(text)
	if err != nil {
		return "", fmt.Errorf("ContentHash: %w", err)
	}
	return hashWithDomain(artifactDomain, canonical), nil
}
