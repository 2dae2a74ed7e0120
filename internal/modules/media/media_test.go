package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	assert.Equal(t, "photo.png", SafeName("photo.png"))
	assert.Equal(t, "a-b_c.1.jpg", SafeName(" a-b_c.1.jpg "))
	// traversal collapses to the base name
	assert.Equal(t, "passwd", SafeName("../etc/passwd"))
	assert.Empty(t, SafeName(".."))
	assert.Empty(t, SafeName("has space.png"))
	assert.Empty(t, SafeName(""))
	assert.Empty(t, SafeName("über.png"))
}

func TestBuildFileName(t *testing.T) {
	name := buildFileName("Photo.PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, 18+len(".png"))

	assert.True(t, strings.HasSuffix(buildFileName("noext"), ".dat"))
	assert.NotEqual(t, buildFileName("a.png"), buildFileName("a.png"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Contains(t, contentTypeFor("a.png"), "image/png")
	assert.Equal(t, "application/octet-stream", contentTypeFor("a.unknownext"))
}
