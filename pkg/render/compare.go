package render

import (
	"fmt"
	"image"
	"image/color"
)

// CompareOptions controls how closely two renders must agree.
type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) still counted
	// as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any pixel of the other image within
	// this many pixels, absorbing small text shifts.
	FuzzyRadius int
	// MaxDifferentPercent accepts the images when at most this share of
	// pixels differ.
	MaxDifferentPercent float64
	// Diff requests an image highlighting the differing pixels in red.
	Diff bool
}

// CompareResult summarizes a comparison.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int
	DiffImage       *image.RGBA
}

// Compare checks actual against expected pixel by pixel. Images of
// different sizes never match and produce an error.
func Compare(actual, expected image.Image, opts CompareOptions) (CompareResult, error) {
	ab, eb := actual.Bounds(), expected.Bounds()
	if ab.Size() != eb.Size() {
		return CompareResult{}, fmt.Errorf("image sizes differ: %v and %v", ab.Size(), eb.Size())
	}

	res := CompareResult{Match: true, TotalPixels: ab.Dx() * ab.Dy()}
	if opts.Diff {
		res.DiffImage = image.NewRGBA(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			a := rgba8(actual.At(ab.Min.X+x, ab.Min.Y+y))
			d := channelDiff(a, rgba8(expected.At(eb.Min.X+x, eb.Min.Y+y)))
			res.MaxDifference = max(res.MaxDifference, d)

			same := d <= opts.Tolerance ||
				(opts.FuzzyRadius > 0 && nearbyMatch(a, expected, eb, x, y, opts.FuzzyRadius, opts.Tolerance))
			if !same {
				res.Match = false
				res.DifferentPixels++
			}
			if res.DiffImage != nil {
				if same {
					res.DiffImage.SetRGBA(x, y, color.RGBA{a.R, a.R, a.R, 255})
				} else {
					res.DiffImage.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
				}
			}
		}
	}

	if !res.Match && opts.MaxDifferentPercent > 0 && res.TotalPixels > 0 {
		if float64(res.DifferentPixels)/float64(res.TotalPixels)*100 <= opts.MaxDifferentPercent {
			res.Match = true
		}
	}
	return res, nil
}

func nearbyMatch(a color.RGBA, expected image.Image, eb image.Rectangle, x, y, radius, tolerance int) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= eb.Dx() || ny >= eb.Dy() {
				continue
			}
			if channelDiff(a, rgba8(expected.At(eb.Min.X+nx, eb.Min.Y+ny))) <= tolerance {
				return true
			}
		}
	}
	return false
}

func rgba8(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func channelDiff(a, b color.RGBA) int {
	return max(absDiff(a.R, b.R), absDiff(a.G, b.G), absDiff(a.B, b.B), absDiff(a.A, b.A))
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
