// Package imaging normalizes probe images before they are sent to the
// embedding extractor.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// probeSize is the square size every probe is scaled to before extraction.
const probeSize = 400

// NormalizeProbe decodes an uploaded probe image and re-encodes it as a
// 400x400 JPEG. A decode failure means the upload was not an image at all
// and is surfaced to the caller as invalid input.
func NormalizeProbe(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, probeSize, probeSize))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
