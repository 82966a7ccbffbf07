package retexture

import (
	"image"

	"github.com/disintegration/imaging"
)

// RemoveBackground returns a copy of img with every pixel matching key
// made fully transparent. Only alpha changes; the color channels of
// matched pixels stay intact, so a later pass can still read them.
// Non-matching pixels are untouched.
func RemoveBackground(img *image.NRGBA, key ChromaKey) *image.NRGBA {
	out := imaging.Clone(img)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	for y := range h {
		row := out.Pix[y*out.Stride:]
		for x := range w {
			off := x * 4
			if key.Matches(int(row[off]), int(row[off+1]), int(row[off+2])) {
				row[off+3] = 0
			}
		}
	}
	return out
}
