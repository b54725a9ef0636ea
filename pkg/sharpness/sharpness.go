// Package sharpness estimates how well focused a frame is from the share of
// high spatial frequencies in its luma spectrum.
package sharpness

import (
	"image"
	"image/color"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DefaultSize is the side length of the luma grid used by Score.
const DefaultSize = 64

// Score returns a value in [0, 1]. Flat or defocused frames score near zero,
// frames with crisp edges score higher. size is the side of the square grid
// the image is sampled into before the transform.
func Score(img image.Image, size int) float64 {
	if size <= 0 {
		size = DefaultSize
	}
	b := img.Bounds()
	if b.Empty() {
		return 0
	}

	grid := make([][]float64, size)
	var mean float64
	for y := range grid {
		grid[y] = make([]float64, size)
		sy := b.Min.Y + y*b.Dy()/size
		for x := range grid[y] {
			sx := b.Min.X + x*b.Dx()/size
			l := float64(color.GrayModel.Convert(img.At(sx, sy)).(color.Gray).Y)
			grid[y][x] = l
			mean += l
		}
	}
	mean /= float64(size * size)
	for y := range grid {
		for x := range grid[y] {
			grid[y][x] -= mean
		}
	}

	spectrum := fft.FFT2Real(grid)

	cutoff := size / 8
	var total, high float64
	for v, row := range spectrum {
		fv := min(v, size-v)
		for u, c := range row {
			fu := min(u, size-u)
			e := cmplx.Abs(c)
			e *= e
			total += e
			if fu*fu+fv*fv > cutoff*cutoff {
				high += e
			}
		}
	}
	if total == 0 {
		return 0
	}
	return high / total
}
