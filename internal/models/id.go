package models

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// NewID returns a short url-safe random identifier used for games, zones,
// sessions and clicks. 10 bytes -> 16 chars of lowercase base32.
func NewID() string {
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
