package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"supashop-api/internal/util"
	"supashop-api/pkg/apierror"
)

const (
	jpegQuality = 85

	// maxSourcePixels caps the declared size of an upload before it is
	// decoded; decoding allocates the full pixel buffer up front.
	maxSourcePixels = 40_000_000
)

// NormalizeImage decodes an uploaded picture, scales it down so neither side
// exceeds maxDim and re-encodes it as JPEG. Anything that is not a decodable
// image is rejected with 415, and an image declaring more than
// maxSourcePixels pixels with 413.
func NormalizeImage(data []byte, maxDim int) ([]byte, error) {
	if len(data) == 0 {
		return nil, apierror.BadRequest("image is empty")
	}

	mimeType := util.DetectMIME(data)
	if !util.IsDecodableImageMIME(mimeType) {
		return nil, apierror.New("UNSUPPORTED_TYPE", "file is not a supported image", mimeType, http.StatusUnsupportedMediaType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", "", http.StatusUnsupportedMediaType)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, apierror.New("PAYLOAD_TOO_LARGE", "image dimensions too large",
			fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), http.StatusRequestEntityTooLarge)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", "", http.StatusUnsupportedMediaType)
	}

	dst := scaleToFit(src, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func scaleToFit(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
		return dst
	}

	newWidth, newHeight := maxDim, maxDim
	if width > height {
		newHeight = height * maxDim / width
	} else {
		newWidth = width * maxDim / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
