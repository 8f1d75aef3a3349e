/*
Package randx generates cryptographically secure identifiers.

Base62 strings name live form sessions; UUIDs identify stored users and contacts.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the alphabet used for Base62 identifiers (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 alphabet.
	Base62Len = int64(len(Base62Chars))

	// SessionIDLength is the length of a live session identifier.
	SessionIDLength = 12
)

// Base62 returns a random Base62 string of the given length drawn from crypto/rand.
func Base62(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random base62 character: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// SessionID returns a new live session identifier.
func SessionID() (string, error) {
	return Base62(SessionIDLength)
}

// NewID returns a random (version 4) UUID.
func NewID() uuid.UUID {
	return uuid.New()
}
