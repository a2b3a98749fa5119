package handlers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/your-org/attend/internal/vision"
)

// decodeImage decodes a base64 JPEG or PNG payload into a BGR image.
// Data-URL prefixes ("data:image/jpeg;base64,...") are stripped.
func decodeImage(encoded string) (*vision.Image, error) {
	_, img, err := decodeImageBytes(encoded)
	return img, err
}

// decodeImageBytes additionally returns the raw compressed bytes, for
// callers that archive the original frame.
func decodeImageBytes(encoded string) ([]byte, *vision.Image, error) {
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("decode base64: %w", err)
	}

	img, err := vision.Decode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}
	return raw, img, nil
}
