package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/covers/courses/c1/a.png", PublicURL("covers", "courses/c1/a.png"))
	assert.Equal(t, "https://storage.googleapis.com/covers/courses/c1/my%20cover.png", PublicURL("covers", "courses/c1/my cover.png"))
}
