package retexture

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ShadingField carries a per-pixel brightness multiplier derived from
// the source frame. Values inside the fill mask sit in the configured
// clamp range; everything outside the mask is exactly 1.0.
type ShadingField struct {
	W, H int
	Val  []float64 // len = W*H
}

// At returns the shading value at (x, y).
func (f *ShadingField) At(x, y int) float64 {
	return f.Val[y*f.W+x]
}

// ExtractShading derives shading from the luminance of src under fill.
// Luminance is 0.299 R + 0.587 G + 0.114 B. Masked luminances are
// min-max normalized so the brightest masked pixel maps to 1.0 and the
// darkest to 0.0, then clamped to [clampMin, clampMax]. A mask with no
// members yields an all-1.0 field, and a flat region where min equals
// max yields 1.0 for every member. Run this on the frame before
// keying; fill must have the same dimensions as src.
func ExtractShading(src image.Image, fill *Mask, clampMin, clampMax float64) *ShadingField {
	img := asNRGBA(src)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	f := &ShadingField{W: w, H: h, Val: make([]float64, w*h)}
	for i := range f.Val {
		f.Val[i] = 1.0
	}

	lum := make([]float64, w*h)
	masked := make([]float64, 0, w*h)
	for y := range h {
		row := img.Pix[y*img.Stride:]
		for x := range w {
			off := x * 4
			l := 0.299*float64(row[off]) + 0.587*float64(row[off+1]) + 0.114*float64(row[off+2])
			idx := maskOffset(w, x, y)
			lum[idx] = l
			if fill.Pix[idx] > 128 {
				masked = append(masked, l)
			}
		}
	}
	if len(masked) == 0 {
		return f
	}

	mn := floats.Min(masked)
	mx := floats.Max(masked)
	if mx == mn {
		// Flat lighting, members already hold 1.0.
		return f
	}
	scale := 1.0 / (mx - mn)
	for i, v := range fill.Pix {
		if v > 128 {
			f.Val[i] = min(clampMax, max(clampMin, (lum[i]-mn)*scale))
		}
	}
	return f
}

// Encode packs the field into an 8-bit grayscale image with
// byte = round(value * 255). The default [0.4, 1.0] clamp lands on
// bytes 102 through 255, and unmasked 1.0 pixels on 255, so the
// mapping inverts without loss beyond 8-bit rounding.
func (f *ShadingField) Encode() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, f.W, f.H))
	for i, v := range f.Val {
		g.Pix[i] = uint8(max(0, min(255, math.Round(v*255))))
	}
	return g
}

// DecodeShading restores a field from its encoded form: byte / 255
// clamped to [clampMin, clampMax] inside fill, 1.0 outside. Pass the
// same mask and clamp bounds used when the field was extracted.
func DecodeShading(g *image.Gray, fill *Mask, clampMin, clampMax float64) *ShadingField {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	f := &ShadingField{W: w, H: h, Val: make([]float64, w*h)}
	for y := range h {
		for x := range w {
			idx := maskOffset(w, x, y)
			if fill.Pix[idx] > 128 {
				v := float64(g.Pix[y*g.Stride+x]) / 255.0
				f.Val[idx] = min(clampMax, max(clampMin, v))
			} else {
				f.Val[idx] = 1.0
			}
		}
	}
	return f
}
