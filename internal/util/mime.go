package util

import (
	"net/http"
	"strings"
)

// DetectMIME sniffs the content type of data from its first 512 bytes.
func DetectMIME(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

// IsDecodableImageMIME reports whether uploads of this type can be decoded
// and re-encoded by the image pipeline.
func IsDecodableImageMIME(mimeType string) bool {
	base := strings.SplitN(mimeType, ";", 2)[0]
	switch strings.ToLower(strings.TrimSpace(base)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
