package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestCompare(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	base := solid(10, 10, white)

	shifted := solid(10, 10, white)
	shifted.SetRGBA(3, 3, color.RGBA{A: 255})
	withDot := solid(10, 10, white)
	withDot.SetRGBA(4, 3, color.RGBA{A: 255})

	nearly := solid(10, 10, color.RGBA{253, 255, 255, 255})

	tests := []struct {
		name      string
		actual    image.Image
		expected  image.Image
		opts      CompareOptions
		match     bool
		different int
	}{
		{"identical", base, base, CompareOptions{}, true, 0},
		{"within tolerance", nearly, base, CompareOptions{Tolerance: 2}, true, 0},
		{"outside tolerance", nearly, base, CompareOptions{}, false, 100},
		{"one pixel off", shifted, base, CompareOptions{}, false, 1},
		{"percentage allowed", shifted, base, CompareOptions{MaxDifferentPercent: 1}, true, 1},
		{"fuzzy radius absorbs shift", shifted, withDot, CompareOptions{FuzzyRadius: 1}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compare(tt.actual, tt.expected, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.match, res.Match)
			assert.Equal(t, tt.different, res.DifferentPixels)
			assert.Equal(t, 100, res.TotalPixels)
		})
	}
}

func TestCompareDiffImage(t *testing.T) {
	base := solid(4, 4, color.RGBA{255, 255, 255, 255})
	other := solid(4, 4, color.RGBA{255, 255, 255, 255})
	other.SetRGBA(1, 2, color.RGBA{B: 255, A: 255})

	res, err := Compare(other, base, CompareOptions{Diff: true})
	require.NoError(t, err)
	require.NotNil(t, res.DiffImage)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, res.DiffImage.RGBAAt(1, 2))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, res.DiffImage.RGBAAt(0, 0))
	assert.Equal(t, 255, res.MaxDifference)
}

func TestCompareSizeMismatch(t *testing.T) {
	_, err := Compare(solid(2, 2, color.RGBA{}), solid(3, 2, color.RGBA{}), CompareOptions{})
	assert.Error(t, err)
}
