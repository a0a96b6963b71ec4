package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImageSignature(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	gif := []byte("GIF89a......")
	webp := append([]byte("RIFF"), append(make([]byte, 4), []byte("WEBP")...)...)

	assert.True(t, isImageSignature(jpeg))
	assert.True(t, isImageSignature(png))
	assert.True(t, isImageSignature(gif))
	assert.True(t, isImageSignature(webp))

	assert.False(t, isImageSignature([]byte("%PDF-1.7")))
	assert.False(t, isImageSignature([]byte("<script>alert(1)</script>")))
	assert.False(t, isImageSignature(nil))
	assert.False(t, isImageSignature([]byte{0xFF, 0xD8}))
}
