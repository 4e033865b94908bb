package imaging

import (
	"bytes"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"anpr-crossing/internal/geometry"
)

// Crop cuts box out of frame and scales it to width x height. Box coordinates are
// relative to the frame origin and are clamped to the frame first; ok is false when
// nothing of the box is left after clamping.
func Crop(frame image.Image, box geometry.Box, width, height int) (image.Image, bool) {
	bounds := frame.Bounds()
	local := box.Clamp(bounds.Dx(), bounds.Dy())
	if !local.Valid() || width <= 0 || height <= 0 {
		return nil, false
	}

	src := local.Rect().Add(bounds.Min)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), frame, src, draw.Src, nil)
	return dst, true
}

func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
