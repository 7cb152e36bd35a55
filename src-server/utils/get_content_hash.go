package utils

import (
	"crypto/sha256"
	"fmt"
	"io"
)

// Hex encoded sha256 of everything read from r
func GetContentHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("GetContentHash: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
