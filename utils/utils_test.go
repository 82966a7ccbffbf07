package utils

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestSaveReadImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 230, G: 170, B: 50, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 22, G: 187, B: 0, A: 0})
	img.SetNRGBA(0, 1, color.NRGBA{A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 128})

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SaveImage(img, path); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	got, err := ReadImage(path)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", img.Bounds(), got.Bounds())
	}

	// PNG stores straight alpha, so every byte survives.
	for y := range 2 {
		for x := range 2 {
			want := img.NRGBAAt(x, y)
			c := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
			if c != want {
				t.Errorf("Pixel (%d,%d): expected %v, got %v", x, y, want, c)
			}
		}
	}
}

func TestReadImageMissing(t *testing.T) {
	if _, err := ReadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestSaveImageUnknownExtension(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if err := SaveImage(img, filepath.Join(t.TempDir(), "frame.raw")); err == nil {
		t.Fatal("Expected an error for an unsupported extension")
	}
}

func TestPaletteFromNRGBA(t *testing.T) {
	palette := PaletteFromNRGBA([]color.NRGBA{
		{R: 22, G: 187, B: 0, A: 255},
		{R: 10, G: 10, B: 10, A: 0}, // dropped
		{R: 230, G: 170, B: 50, A: 255},
	})
	if len(palette) != 2 {
		t.Fatalf("Expected 2 colors after dropping the transparent one, got %d", len(palette))
	}
	if got := palette[0].Hex(); got != "#16bb00" {
		t.Errorf("Expected #16bb00, got %s", got)
	}
	if got := palette[1].Hex(); got != "#e6aa32" {
		t.Errorf("Expected #e6aa32, got %s", got)
	}
}

func TestSortPaletteByBrightness(t *testing.T) {
	white, _ := colorful.MakeColor(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	gray, _ := colorful.MakeColor(color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	black, _ := colorful.MakeColor(color.NRGBA{A: 255})

	palette := []colorful.Color{white, black, gray}
	SortPaletteByBrightness(palette)

	want := []string{"#000000", "#808080", "#ffffff"}
	for i, w := range want {
		if got := palette[i].Hex(); got != w {
			t.Errorf("Position %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestSavePalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palette.png")
	palette := PaletteFromNRGBA([]color.NRGBA{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 200, G: 100, B: 50, A: 255},
	})

	if err := SavePalette(palette, 8, path); err != nil {
		t.Fatalf("SavePalette failed: %v", err)
	}
	img, err := ReadImage(path)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Fatalf("Expected a 16x8 strip, got %v", img.Bounds())
	}

	// Tile colors survive the float round trip within one step.
	first := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	second := color.NRGBAModel.Convert(img.At(8, 0)).(color.NRGBA)
	for _, p := range []struct {
		got  color.NRGBA
		want color.NRGBA
	}{
		{first, color.NRGBA{R: 10, G: 20, B: 30, A: 255}},
		{second, color.NRGBA{R: 200, G: 100, B: 50, A: 255}},
	} {
		if diff(p.got.R, p.want.R) > 1 || diff(p.got.G, p.want.G) > 1 || diff(p.got.B, p.want.B) > 1 {
			t.Errorf("Expected tile near %v, got %v", p.want, p.got)
		}
	}

	if err := SavePalette(nil, 8, filepath.Join(dir, "empty.png")); err == nil {
		t.Error("Expected an error for an empty palette")
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestSavePaletteDefaultTileSize(t *testing.T) {
	palette := PaletteFromNRGBA([]color.NRGBA{{R: 255, A: 255}})
	path := filepath.Join(t.TempDir(), "palette.png")
	if err := SavePalette(palette, 0, path); err != nil {
		t.Fatalf("SavePalette failed: %v", err)
	}
	img, err := ReadImage(path)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("Expected the 64 pixel default tile, got %v", img.Bounds())
	}
}
