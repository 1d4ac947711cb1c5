package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"supashop-api/pkg/apierror"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR width and height of a PNG and fixes the
// chunk checksum, leaving the pixel data untouched.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()

	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir(), 512)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, FolderProducts, pngBytes(t, 40, 20))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "products/"))
	require.True(t, strings.HasSuffix(ref, ".jpg"))

	stored, err := os.ReadFile(filepath.Join(store.RootAbs(), filepath.FromSlash(ref)))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 40, cfg.Width)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(store.RootAbs(), filepath.FromSlash(ref)))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStoreRejectsTraversalOnDelete(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir(), 0)
	require.NoError(t, err)

	err = store.Delete(context.Background(), "../outside.jpg")
	require.Equal(t, 403, apierror.Status(err))
}

func TestNormalizeImage(t *testing.T) {
	t.Parallel()

	t.Run("downscales large images keeping aspect ratio", func(t *testing.T) {
		out, err := NormalizeImage(pngBytes(t, 400, 100), 100)
		require.NoError(t, err)

		img, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		require.Equal(t, 100, img.Bounds().Dx())
		require.Equal(t, 25, img.Bounds().Dy())
	})

	t.Run("small images keep their size", func(t *testing.T) {
		out, err := NormalizeImage(pngBytes(t, 30, 60), 100)
		require.NoError(t, err)

		img, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		require.Equal(t, 30, img.Bounds().Dx())
		require.Equal(t, 60, img.Bounds().Dy())
	})

	t.Run("non images are unsupported", func(t *testing.T) {
		_, err := NormalizeImage([]byte("%PDF-1.4 not an image"), 100)
		require.Equal(t, 415, apierror.Status(err))
	})

	t.Run("oversized declared dimensions are refused before decoding", func(t *testing.T) {
		_, err := NormalizeImage(withDeclaredSize(t, pngBytes(t, 4, 4), 60000, 60000), 100)
		require.Equal(t, 413, apierror.Status(err))
	})

	t.Run("empty uploads are bad requests", func(t *testing.T) {
		_, err := NormalizeImage(nil, 100)
		require.Equal(t, 400, apierror.Status(err))
	})
}

func TestPublicIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/supashop/stores/abc.jpg", "supashop/stores/abc"},
		{"https://res.cloudinary.com/demo/image/upload/products/xyz.jpg", "products/xyz"},
		{"https://res.cloudinary.com/demo/image/upload/v1/users/u1", "users/u1"},
	}

	for _, tc := range tests {
		got, err := publicIDFromURL(tc.url)
		require.NoError(t, err, tc.url)
		require.Equal(t, tc.want, got)
	}

	_, err := publicIDFromURL("https://example.com/images/abc.jpg")
	require.Error(t, err)
}
