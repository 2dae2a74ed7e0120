package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeTarget(t *testing.T) {
	base := "https://mail.example.com"

	assert.Equal(t, "https://mail.example.com/p/sale",
		SafeTarget(base, "https://mail.example.com/p/sale"))

	// Off-site and scheme-bending targets fall back to the base URL.
	assert.Equal(t, base, SafeTarget(base, "https://evil.example.org/phish"))
	assert.Equal(t, base, SafeTarget(base, "javascript:alert(1)"))
	assert.Equal(t, base, SafeTarget(base, ""))
	assert.Equal(t, base, SafeTarget(base, "::bad::url"))
}

func TestPixelIsValidGIFHeader(t *testing.T) {
	assert.Equal(t, "GIF89a", string(pixelGIF[:6]))
}
