package retexture

import (
	"image"

	"github.com/disintegration/imaging"
)

// ApplyTexture composites texture into the fill region of base. Masked
// pixels take the texture color scaled by the shading value, with the
// float product truncated to uint8; their alpha is copied from base,
// so keyed-out pixels stay invisible. Unmasked pixels are byte
// identical to base. A texture whose size differs from base is resized
// to match with filter first; a size mismatch is never an error.
// fill and shading must have base's dimensions.
func ApplyTexture(base *image.NRGBA, texture image.Image, fill *Mask, shading *ShadingField, filter Filter) (*image.NRGBA, error) {
	if texture == nil {
		return nil, ErrNilImage
	}
	resampler, err := filter.resampler()
	if err != nil {
		return nil, err
	}
	w, h := base.Rect.Dx(), base.Rect.Dy()
	tex := asNRGBA(texture)
	if tex.Rect.Dx() != w || tex.Rect.Dy() != h {
		tex = imaging.Resize(texture, w, h, resampler)
	}

	out := imaging.Clone(base)
	for y := range h {
		outRow := out.Pix[y*out.Stride:]
		texRow := tex.Pix[y*tex.Stride:]
		for x := range w {
			idx := maskOffset(w, x, y)
			if fill.Pix[idx] <= 128 {
				continue
			}
			off := x * 4
			s := shading.Val[idx]
			outRow[off] = uint8(float64(texRow[off]) * s)
			outRow[off+1] = uint8(float64(texRow[off+1]) * s)
			outRow[off+2] = uint8(float64(texRow[off+2]) * s)
		}
	}
	return out, nil
}

// OverlayOutline returns a copy of img with every outline pixel forced
// to black. Alpha is preserved exactly, so outline pixels that were
// keyed out stay invisible. Applying the same overlay twice changes
// nothing.
func OverlayOutline(img *image.NRGBA, outline *Mask) *image.NRGBA {
	out := imaging.Clone(img)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	for y := range h {
		row := out.Pix[y*out.Stride:]
		for x := range w {
			if outline.Pix[maskOffset(w, x, y)] > 128 {
				off := x * 4
				row[off] = 0
				row[off+1] = 0
				row[off+2] = 0
			}
		}
	}
	return out
}
