package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGravatarURL(t *testing.T) {
	// sha256 of "test@example.com"
	const hash = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"

	assert.Equal(t, "https://www.gravatar.com/avatar/"+hash+"?s=80&d=mp", GravatarURL("  Test@Example.com ", 0))
	assert.Equal(t, "https://www.gravatar.com/avatar/"+hash+"?s=32&d=mp", GravatarURL("test@example.com", 32))
	assert.Equal(t, "https://www.gravatar.com/avatar/?s=80&d=mp", GravatarURL("", -1))
}
