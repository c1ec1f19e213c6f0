// Package imaging provides the in-memory page edits applied to pending scan
// files: cropping with rotation and zoom, and quarter-turn rotation. All
// operations decode, transform and re-encode; nothing touches disk.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Rect is a crop rectangle in source-image (natural) coordinate space. The
// caller is responsible for converting display coordinates using the
// display-to-natural scale before calling Crop.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) validate(bounds image.Rectangle) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("crop rectangle must have positive dimensions, got %dx%d", r.Width, r.Height)
	}
	crop := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	if !crop.In(bounds) {
		return fmt.Errorf("crop rectangle %v outside image bounds %v", crop, bounds)
	}
	return nil
}

const jpegQuality = 90

// Crop extracts rect from the decoded source, scales it by zoom and rotates
// the result about its center by rotationDeg degrees, then re-encodes as JPEG.
// The output dimensions are rect scaled by zoom; regions rotated in from
// outside the crop box are filled white.
func Crop(src []byte, rect Rect, rotationDeg, zoom float64) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := rect.validate(img.Bounds()); err != nil {
		return nil, err
	}
	if zoom <= 0 {
		zoom = 1
	}

	outW := int(math.Round(float64(rect.Width) * zoom))
	outH := int(math.Round(float64(rect.Height) * zoom))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	crop := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height)
	scaled := image.NewRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, crop, xdraw.Src, nil)

	out := scaled
	if normalizeDegrees(rotationDeg) != 0 {
		out = rotateAboutCenter(scaled, rotationDeg)
	}

	return encodeJPEG(out)
}

// rotateAboutCenter renders src rotated by deg degrees around its own center
// into an image of the same dimensions, sampling bilinearly. Pixels whose
// source falls outside the input are white, matching a paper-scan background.
func rotateAboutCenter(src *image.RGBA, deg float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	radians := deg * math.Pi / 180
	sin, cos := math.Sincos(-radians) // inverse mapping: dst -> src
	cx, cy := float64(w)/2, float64(h)/2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			sx := dx*cos - dy*sin + cx - 0.5
			sy := dx*sin + dy*cos + cy - 0.5
			dst.SetRGBA(x, y, sampleBilinear(src, sx, sy))
		}
	}
	return dst
}

// sampleBilinear reads src at a fractional position. Out-of-bounds samples
// are white.
func sampleBilinear(src *image.RGBA, x, y float64) color.RGBA {
	b := src.Bounds()
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	at := func(px, py int) color.RGBA {
		if px < b.Min.X || py < b.Min.Y || px >= b.Max.X || py >= b.Max.Y {
			return color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return src.RGBAAt(px, py)
	}

	c00 := at(x0, y0)
	c10 := at(x0+1, y0)
	c01 := at(x0, y0+1)
	c11 := at(x0+1, y0+1)

	lerp := func(a, b uint8, t float64) float64 {
		return float64(a)*(1-t) + float64(b)*t
	}
	mix := func(f func(color.RGBA) uint8) uint8 {
		top := lerp(f(c00), f(c10), fx)
		bottom := lerp(f(c01), f(c11), fx)
		return uint8(math.Round(top*(1-fy) + bottom*fy))
	}

	return color.RGBA{
		R: mix(func(c color.RGBA) uint8 { return c.R }),
		G: mix(func(c color.RGBA) uint8 { return c.G }),
		B: mix(func(c color.RGBA) uint8 { return c.B }),
		A: mix(func(c color.RGBA) uint8 { return c.A }),
	}
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
