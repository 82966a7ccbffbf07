package utils

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	// imaging registers png, jpeg, gif, tiff and bmp. webp frames and
	// textures decode through this side effect import.
	_ "golang.org/x/image/webp"
)

// ReadImage loads the image at path. PNG, JPEG, GIF, TIFF, BMP and
// WEBP decode out of the box.
func ReadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return img, nil
}

// SaveImage writes img to filename. The encoder follows the file
// extension; use .png to keep alpha.
func SaveImage(img image.Image, filename string) error {
	if err := imaging.Save(img, filename); err != nil {
		return fmt.Errorf("save image %s: %w", filename, err)
	}
	return nil
}

// PaletteFromNRGBA converts 8-bit colors into colorful colors for the
// palette helpers. Fully transparent entries are dropped.
func PaletteFromNRGBA(colors []color.NRGBA) []colorful.Color {
	out := make([]colorful.Color, 0, len(colors))
	for _, c := range colors {
		if c.A == 0 {
			continue
		}
		col, ok := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		if !ok {
			continue
		}
		out = append(out, col)
	}
	return out
}

// SortPaletteByBrightness orders colors from darkest to brightest.
// The first palette entry becomes the darkest color (background).
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

// SavePalette writes the palette as a horizontal swatch strip, one
// tile per color.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i, c := range palette {
		r := uint8(max(0, min(255, c.R*255)))
		g := uint8(max(0, min(255, c.G*255)))
		b := uint8(max(0, min(255, c.B*255)))
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
	}

	return SaveImage(img, filename)
}
