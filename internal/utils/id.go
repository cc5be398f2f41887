package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewRoomCode returns a short shareable room identifier: 12 lowercase
// hex characters, 48 bits of entropy, enough to make collisions among
// active rooms negligible.
func NewRoomCode() string {
	const size = 6

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	// Fallback to timestamp if crypto/rand is unavailable.
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
