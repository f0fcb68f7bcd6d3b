package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "jpg", NormalizeExt(".JPG"))
	assert.Equal(t, "heic", NormalizeExt("HEIC"))
	assert.Equal(t, "", NormalizeExt("."))
}

func TestIsAllowedExt(t *testing.T) {
	assert.True(t, IsAllowedExt(".jpeg"))
	assert.True(t, IsAllowedExt("png"))
	assert.False(t, IsAllowedExt(".pdf"))
	assert.False(t, IsAllowedExt(""))
}

// Every extension routed to HEIC conversion must also pass the intake filter,
// or the conversion branch can never run.
func TestHEICExtensionsAreAllowed(t *testing.T) {
	for _, ext := range []string{"heic", "heif"} {
		assert.True(t, IsHEICExt(ext), ext)
		assert.True(t, IsAllowedExt(ext), ext)
	}
}
