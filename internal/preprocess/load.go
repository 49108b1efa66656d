package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
)

// DecodeImage decodes a raw image byte buffer. Supported formats are PNG,
// JPEG, and GIF. A buffer that cannot be decoded is a fatal error for the
// call, surfaced as a StageError with stage "load".
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &StageError{Stage: "load", Err: fmt.Errorf("failed to decode image: %w", err)}
	}
	return img, nil
}

// LoadImage reads and decodes an image file from disk.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StageError{Stage: "load", Err: fmt.Errorf("failed to read image: %w", err)}
	}
	return DecodeImage(data)
}
