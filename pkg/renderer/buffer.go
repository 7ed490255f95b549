package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Buffer holds one unbounded RGB value per pixel, row-major
type Buffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewBuffer creates a black buffer
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the value at column x, row y
func (b *Buffer) At(x, y int) core.Vec3 {
	return b.Pixels[y*b.Width+x]
}

// Set stores the value at column x, row y
func (b *Buffer) Set(x, y int, v core.Vec3) {
	b.Pixels[y*b.Width+x] = v
}

// Quantize converts a display value to an 8-bit channel. The value is
// shifted down by core.Epsilon before scaling so that exactly 1.0 lands on
// 254, then truncated and clamped.
func Quantize(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	scaled := (v - core.Epsilon) * 255
	if scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return 255
	}
	return uint8(int(scaled))
}

// ToRGBA quantizes every pixel into an opaque RGBA image
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			v := b.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: Quantize(v.X),
				G: Quantize(v.Y),
				B: Quantize(v.Z),
				A: 255,
			})
		}
	}
	return img
}
