package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDecodableImageMIME(t *testing.T) {
	t.Parallel()

	require.True(t, IsDecodableImageMIME("image/jpeg"))
	require.True(t, IsDecodableImageMIME(" IMAGE/WEBP "))
	require.True(t, IsDecodableImageMIME("image/png; charset=binary"))
	require.False(t, IsDecodableImageMIME("image/svg+xml"))
	require.False(t, IsDecodableImageMIME("text/plain; charset=utf-8"))
}

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.Equal(t, "image/png", DetectMIME(png))
	require.Equal(t, "image/gif", DetectMIME([]byte("GIF89a")))
	require.Equal(t, "text/plain; charset=utf-8", DetectMIME([]byte("hello")))
}
