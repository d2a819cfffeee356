// Package cryptids generates short random identifiers for trace ids.
package cryptids

import (
	"crypto/rand"
	"errors"
)

var (
	IDAlphabet = "bcdfghjklmnpqrstvwxyZBCDFGHJKLMNPQRSTVWXYZ0123456789"
	IDLength   = 18
)

// GenerateID creates a random string from the default alphabet and length.
func GenerateID() (string, error) {
	return generateID(IDAlphabet, IDLength)
}

func generateID(alphabet string, size int) (string, error) {
	if len(alphabet) < 2 {
		return "", errors.New("alphabet must contain at least 2 characters")
	}
	if size < 1 {
		return "", errors.New("size must be at least 1")
	}

	// Smallest all-ones mask covering the alphabet; indexes past the end are
	// rejected so every symbol stays equally likely.
	mask := 1
	for mask < len(alphabet) {
		mask = (mask << 1) | 1
	}

	step := size * 8 / 5
	if step < size {
		step = size
	}

	id := make([]byte, 0, size)
	buf := make([]byte, step)
	for len(id) < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b) & mask
			if idx >= len(alphabet) {
				continue
			}
			id = append(id, alphabet[idx])
			if len(id) == size {
				break
			}
		}
	}

	return string(id), nil
}
