package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
)

// Rotate re-renders the image turned by a multiple of 90 degrees (positive is
// clockwise) and re-encodes it as JPEG. Width and height are swapped when the
// net rotation is an odd multiple of 90.
func Rotate(src []byte, angleDeg int) ([]byte, error) {
	if angleDeg%90 != 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", angleDeg)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	turns := ((angleDeg/90)%4 + 4) % 4
	if turns == 0 {
		return encodeJPEG(img)
	}

	rgba := toRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	switch turns {
	case 1: // 90 clockwise
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < w; y++ {
			for x := 0; x < h; x++ {
				dst.SetRGBA(x, y, rgba.RGBAAt(y, h-1-x))
			}
		}
	case 2: // 180
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.SetRGBA(x, y, rgba.RGBAAt(w-1-x, h-1-y))
			}
		}
	case 3: // 90 counter-clockwise
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < w; y++ {
			for x := 0; x < h; x++ {
				dst.SetRGBA(x, y, rgba.RGBAAt(w-1-y, x))
			}
		}
	}

	return encodeJPEG(dst)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
