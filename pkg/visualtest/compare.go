// Package visualtest renders documents to images and compares images with
// tolerances, for tests of the raster output.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // Max color channel difference found
	// DiffBounds is the smallest rectangle holding every different pixel.
	DiffBounds image.Rectangle
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance is the maximum allowed difference per color channel (0-255).
	Tolerance int

	// FuzzyRadius lets a pixel match any expected pixel within this radius,
	// absorbing 1-2px glyph shifts.
	FuzzyRadius int

	// MaxDifferentPercent passes the comparison if at most this percentage
	// of the pixels differ.
	MaxDifferentPercent float64

	// SaveDiffImage saves an image highlighting differences at
	// DiffImagePath when the images do not match.
	SaveDiffImage bool
	DiffImagePath string
}

// DefaultOptions returns sensible defaults for image comparison
func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// LoadPNG decodes a PNG file.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// CompareImages compares two PNG files pixel by pixel.
func CompareImages(actualPath, expectedPath string, opts CompareOptions) (*CompareResult, error) {
	actual, err := LoadPNG(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual image: %w", err)
	}
	expected, err := LoadPNG(expectedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load expected image: %w", err)
	}
	return Compare(actual, expected, opts)
}

// Compare compares two images pixel by pixel.
func Compare(actualImg, expectedImg image.Image, opts CompareOptions) (*CompareResult, error) {
	actualBounds := actualImg.Bounds()
	expectedBounds := expectedImg.Bounds()
	if actualBounds != expectedBounds {
		return &CompareResult{Match: false}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", actualBounds, expectedBounds)
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: actualBounds.Dx() * actualBounds.Dy(),
	}

	var diffImg *image.RGBA
	if opts.SaveDiffImage {
		diffImg = image.NewRGBA(actualBounds)
	}

	for y := actualBounds.Min.Y; y < actualBounds.Max.Y; y++ {
		for x := actualBounds.Min.X; x < actualBounds.Max.X; x++ {
			ar, ag, ab, _ := rgba8(actualImg.At(x, y))
			diff := channelDiff(actualImg.At(x, y), expectedImg.At(x, y))
			if diff > result.MaxDifference {
				result.MaxDifference = diff
			}

			gray := uint8((ar + ag + ab) / 3)
			if diff <= opts.Tolerance ||
				(opts.FuzzyRadius > 0 && fuzzyMatch(actualImg, expectedImg, x, y, opts.FuzzyRadius, opts.Tolerance, actualBounds)) {
				if diffImg != nil {
					diffImg.Set(x, y, color.RGBA{gray, gray, gray, 255})
				}
				continue
			}
			result.Match = false
			result.DifferentPixels++
			result.DiffBounds = result.DiffBounds.Union(image.Rect(x, y, x+1, y+1))
			if diffImg != nil {
				diffImg.Set(x, y, color.RGBA{255, 0, 0, 255})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}

	if opts.SaveDiffImage && !result.Match && opts.DiffImagePath != "" {
		if err := savePNG(diffImg, opts.DiffImagePath); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}
	return result, nil
}

func rgba8(c color.Color) (r, g, b, a uint32) {
	r, g, b, a = c.RGBA()
	return r >> 8, g >> 8, b >> 8, a >> 8
}

// channelDiff is the largest difference over the four channels.
func channelDiff(a, e color.Color) int {
	ar, ag, ab, aa := rgba8(a)
	er, eg, eb, ea := rgba8(e)
	return max(
		absInt(int(ar)-int(er)),
		absInt(int(ag)-int(eg)),
		absInt(int(ab)-int(eb)),
		absInt(int(aa)-int(ea)),
	)
}

// fuzzyMatch checks if the actual pixel at (x, y) matches any expected pixel within radius
func fuzzyMatch(actual, expected image.Image, x, y, radius, tolerance int, bounds image.Rectangle) bool {
	a := actual.At(x, y)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(a, expected.At(p.X, p.Y)) <= tolerance {
				return true
			}
		}
	}
	return false
}

func savePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
