package retexture

import "image"

// Mask is a flat byte grid aligned with a frame, one byte per pixel.
// Consumers treat values above 128 as members. Classifiers and Dilate
// write members as 255.
type Mask struct {
	W, H int
	Pix  []uint8 // len = W*H
}

// NewMask returns an empty w by h mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]uint8, w*h)}
}

func maskOffset(w, x, y int) int {
	return y*w + x
}

// At reports whether the pixel at (x, y) is a member.
func (m *Mask) At(x, y int) bool {
	return m.Pix[maskOffset(m.W, x, y)] > 128
}

// Set marks or clears the pixel at (x, y).
func (m *Mask) Set(x, y int, member bool) {
	if member {
		m.Pix[maskOffset(m.W, x, y)] = 255
	} else {
		m.Pix[maskOffset(m.W, x, y)] = 0
	}
}

// Count returns the number of member pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v > 128 {
			n++
		}
	}
	return n
}

// Clone returns a copy sharing no storage with m.
func (m *Mask) Clone() *Mask {
	out := &Mask{W: m.W, H: m.H, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Dilate grows the mask: an interior pixel becomes a member when any
// value in its 3x3 neighborhood, itself included, exceeds noise. Each
// iteration reads the previous iteration's full output, so growth
// compounds up to iterations pixels. The outermost one-pixel border is
// never added. Members are only ever added, never removed. The naive
// per-pixel scan is kept on purpose; frames are small enough that
// clarity wins.
func (m *Mask) Dilate(iterations, noise int) *Mask {
	result := m.Clone()
	for range iterations {
		dilated := result.Clone()
		for y := 1; y < m.H-1; y++ {
			for x := 1; x < m.W-1; x++ {
				if neighborAbove(result, x, y, noise) {
					dilated.Pix[maskOffset(m.W, x, y)] = 255
				}
			}
		}
		result = dilated
	}
	return result
}

func neighborAbove(m *Mask, x, y, noise int) bool {
	for dy := -1; dy <= 1; dy++ {
		row := (y+dy)*m.W + x
		for dx := -1; dx <= 1; dx++ {
			if int(m.Pix[row+dx]) > noise {
				return true
			}
		}
	}
	return false
}

// ToGray copies the mask into a grayscale image for saving.
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	copy(g.Pix, m.Pix)
	return g
}

// MaskFromGray copies a grayscale image back into a mask.
func MaskFromGray(g *image.Gray) *Mask {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	m := NewMask(w, h)
	for y := range h {
		copy(m.Pix[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
	}
	return m
}
