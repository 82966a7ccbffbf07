package retexture

import (
	"image/color"
	"testing"
)

func TestRemoveBackgroundStandard(t *testing.T) {
	img := rowImage(
		color.NRGBA{R: 22, G: 187, B: 0, A: 255},   // chroma green
		color.NRGBA{R: 230, G: 170, B: 50, A: 255}, // sprite body
		color.NRGBA{R: 120, G: 160, B: 40, A: 255}, // blend, saved by the red ceiling
		color.NRGBA{R: 160, G: 200, B: 90, A: 255}, // green dominant but too warm
	)
	out := RemoveBackground(img, DefaultOptions().KeyStandard)

	got := out.NRGBAAt(0, 0)
	if got.A != 0 {
		t.Errorf("Expected the background pixel keyed out, got alpha %d", got.A)
	}
	if got.R != 22 || got.G != 187 || got.B != 0 {
		t.Errorf("Color channels must survive keying, got (%d,%d,%d)", got.R, got.G, got.B)
	}
	for x := 1; x <= 3; x++ {
		if a := out.NRGBAAt(x, 0).A; a != 255 {
			t.Errorf("Column %d: expected alpha 255, got %d", x, a)
		}
	}

	if img.NRGBAAt(0, 0).A != 255 {
		t.Error("RemoveBackground must not mutate its input")
	}
}

func TestRemoveBackgroundAggressive(t *testing.T) {
	img := rowImage(
		color.NRGBA{R: 120, G: 160, B: 40, A: 255}, // blend the standard key misses
		color.NRGBA{R: 200, G: 210, B: 40, A: 255}, // keyed purely on green dominance
		color.NRGBA{R: 230, G: 170, B: 50, A: 255}, // green not dominant
		color.NRGBA{R: 100, G: 100, B: 40, A: 255}, // green at the minimum
	)
	out := RemoveBackground(img, DefaultOptions().KeyAggressive)

	want := []uint8{0, 0, 255, 255}
	for x, w := range want {
		if a := out.NRGBAAt(x, 0).A; a != w {
			t.Errorf("Column %d: expected alpha %d, got %d", x, w, a)
		}
	}
}

func TestChromaKeyRedCeiling(t *testing.T) {
	key := ChromaKey{GreenMin: 100, GreenMargin: 0, RedCeiling: 150}
	if key.Matches(150, 210, 40) {
		t.Error("Red at the ceiling must not match")
	}
	if !key.Matches(149, 210, 40) {
		t.Error("Red below the ceiling must match")
	}

	// Any ceiling above 255 disables the red test entirely.
	disabled := ChromaKey{GreenMin: 100, GreenMargin: 0, RedCeiling: 256}
	if !disabled.Matches(254, 255, 0) {
		t.Error("A disabled ceiling must pass every red value")
	}
}
