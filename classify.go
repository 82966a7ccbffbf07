package retexture

import "image"

// ClassifyFill marks every pixel whose color passes the fill test.
// Alpha is ignored; classification runs on the raw color channels of
// the source frame, before any keying.
func ClassifyFill(img image.Image, t FillThresholds) *Mask {
	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	m := NewMask(w, h)
	for y := range h {
		row := src.Pix[y*src.Stride:]
		for x := range w {
			off := x * 4
			if t.Matches(int(row[off]), int(row[off+1]), int(row[off+2])) {
				m.Pix[maskOffset(w, x, y)] = 255
			}
		}
	}
	return m
}

// ClassifyOutline marks every near-black pixel. Alpha is ignored.
func ClassifyOutline(img image.Image, t OutlineThreshold) *Mask {
	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	m := NewMask(w, h)
	for y := range h {
		row := src.Pix[y*src.Stride:]
		for x := range w {
			off := x * 4
			if t.Matches(int(row[off]), int(row[off+1]), int(row[off+2])) {
				m.Pix[maskOffset(w, x, y)] = 255
			}
		}
	}
	return m
}
