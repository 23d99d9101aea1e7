package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// GravatarURL returns the avatar of email, falling back to the mystery
// person image. Size defaults to 80px.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 80
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Sprintf("https://www.gravatar.com/avatar/?s=%d&d=mp", size)
	}
	sum := sha256.Sum256([]byte(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp", hex.EncodeToString(sum[:]), size)
}
