package retexture

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// FillThresholds selects the warm, saturated pixels of the sprite body
// that receive texture. A pixel matches when red and green clear their
// minimums, blue stays under its maximum, and both red and green exceed
// blue.
type FillThresholds struct {
	// Lower bound for the red channel. Ideal start: 170-200.
	RedMin int
	// Lower bound for the green channel. Ideal start: 110-140.
	// Too low starts matching muddy browns at shaded edges.
	GreenMin int
	// Upper bound for the blue channel.
	// Too high starts matching pale grays and skin tones.
	BlueMax int
}

// Matches reports whether an 8-bit RGB triple passes the fill test.
func (t FillThresholds) Matches(r, g, b int) bool {
	return r > t.RedMin && g > t.GreenMin && b < t.BlueMax && r > b && g > b
}

// OutlineThreshold selects near-black line art: every channel strictly
// below Max. The default 140 is deliberately loose so antialiased line
// edges land inside the mask and produce thick, solid outlines.
type OutlineThreshold struct {
	Max int
}

// Matches reports whether an 8-bit RGB triple passes the outline test.
func (t OutlineThreshold) Matches(r, g, b int) bool {
	return r < t.Max && g < t.Max && b < t.Max
}

// ChromaKey matches green-screen background pixels. A pixel matches
// when green exceeds GreenMin, green exceeds both red and blue by more
// than GreenMargin, and red stays under RedCeiling.
//
// Two presets run in sequence: the standard key before texturing, whose
// red ceiling keeps warm fill pixels out of the match, and the
// aggressive key after texturing, with no ceiling and no margin, which
// catches antialiased edge pixels that blend fill and background.
type ChromaKey struct {
	// GreenMin is the lower bound for the green channel.
	GreenMin int
	// GreenMargin is how far green must exceed red and blue.
	GreenMargin int
	// RedCeiling is the upper bound for the red channel. Any value
	// above 255 disables the test.
	RedCeiling int
}

// Matches reports whether an 8-bit RGB triple is background under this
// key.
func (k ChromaKey) Matches(r, g, b int) bool {
	return g > k.GreenMin &&
		g > r+k.GreenMargin &&
		g > b+k.GreenMargin &&
		(k.RedCeiling > 255 || r < k.RedCeiling)
}

// Filter names the resampling kernel used for texture resize and the
// final downsample.
type Filter string

const (
	FilterLanczos    Filter = "lanczos"
	FilterCatmullRom Filter = "catmullrom"
	FilterLinear     Filter = "linear"
	FilterBox        Filter = "box"
	// FilterNearest is cheap but shows heavy aliasing on detailed
	// textures. Keep it for quick previews only.
	FilterNearest Filter = "nearest"
)

func (f Filter) resampler() (imaging.ResampleFilter, error) {
	switch f {
	case FilterLanczos, "":
		return imaging.Lanczos, nil
	case FilterCatmullRom:
		return imaging.CatmullRom, nil
	case FilterLinear:
		return imaging.Linear, nil
	case FilterBox:
		return imaging.Box, nil
	case FilterNearest:
		return imaging.NearestNeighbor, nil
	}
	return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", string(f))
}

// Options holds every tunable of the retexturing pipeline.
type Options struct {
	// Fill selects the region that receives texture.
	Fill FillThresholds
	// Outline selects the near-black line art drawn over the result.
	Outline OutlineThreshold
	// DilateIterations grows the fill mask to cover antialiased edges.
	// Each iteration adds at most one pixel of growth. Ideal start: 3-5.
	DilateIterations int
	// DilateNoise is the mask value a 3x3 neighbor must exceed before
	// it seeds growth. Values at or below it count as noise.
	DilateNoise int
	// KeyStandard is the chroma key applied before texturing.
	KeyStandard ChromaKey
	// KeyAggressive is the chroma key applied after texturing.
	KeyAggressive ChromaKey
	// ShadingMin and ShadingMax clamp the normalized shading value.
	// Raising ShadingMin keeps dark creases from rendering black.
	ShadingMin float64
	ShadingMax float64
	// OutputSize is the final frame size after downsampling.
	OutputSize image.Point
	// Filter is the resampling kernel for texture resize and the final
	// downsample.
	Filter Filter
}

func DefaultOptions() Options {
	return Options{
		Fill:             FillThresholds{RedMin: 180, GreenMin: 120, BlueMax: 150},
		Outline:          OutlineThreshold{Max: 140},
		DilateIterations: 4,
		DilateNoise:      4,
		KeyStandard:      ChromaKey{GreenMin: 100, GreenMargin: 30, RedCeiling: 100},
		KeyAggressive:    ChromaKey{GreenMin: 100, GreenMargin: 0, RedCeiling: 256},
		ShadingMin:       0.4,
		ShadingMax:       1.0,
		OutputSize:       image.Pt(128, 128),
		Filter:           FilterLanczos,
	}
}

// Validate rejects option sets the pipeline cannot run with.
func (o Options) Validate() error {
	if o.DilateIterations < 0 {
		return fmt.Errorf("dilate iterations must not be negative, got %d", o.DilateIterations)
	}
	if o.DilateNoise < 0 {
		return fmt.Errorf("dilate noise must not be negative, got %d", o.DilateNoise)
	}
	if o.ShadingMin < 0 || o.ShadingMax > 1 || o.ShadingMin > o.ShadingMax {
		return fmt.Errorf("shading clamp [%g, %g] must satisfy 0 <= min <= max <= 1", o.ShadingMin, o.ShadingMax)
	}
	if o.OutputSize.X <= 0 || o.OutputSize.Y <= 0 {
		return fmt.Errorf("output size %dx%d must be positive", o.OutputSize.X, o.OutputSize.Y)
	}
	if _, err := o.Filter.resampler(); err != nil {
		return err
	}
	return nil
}
