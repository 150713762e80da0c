package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateCode returns a random hex string of n bytes, used for
// notification ids.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return hex.EncodeToString(byt), nil
}
