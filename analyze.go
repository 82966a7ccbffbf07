package retexture

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ClusterStat describes one dominant color cluster of a frame.
type ClusterStat struct {
	// Color is the cluster center.
	Color color.NRGBA
	// Hex is the center rendered as #rrggbb.
	Hex string
	// Share is the fraction of sampled pixels in this cluster.
	Share float64
	// DistLab is the CIE Lab distance from the center to the frame's
	// dominant color.
	DistLab float64
	// Fill and Keyed report how the configured classifiers treat the
	// center color.
	Fill  bool
	Keyed bool
}

// LuminanceStats summarizes the luminance values shading extraction
// sees under the dilated fill mask.
type LuminanceStats struct {
	Mean, StdDev float64
	Min, Max     float64
	Samples      int
}

// FrameAnalysis reports how a given Options responds to one frame.
// It is a tuning aid: run it against a representative frame, adjust
// thresholds, run again.
type FrameAnalysis struct {
	Width, Height int
	// Dominant is the strongest color found in the frame.
	Dominant    color.NRGBA
	DominantHex string
	// Clusters are k-means centers over subsampled opaque pixels,
	// largest population first.
	Clusters []ClusterStat
	// FillShare, OutlineShare and KeyedShare are the fractions of
	// frame pixels each classifier matches. FillShare counts the raw
	// classifier output, before dilation.
	FillShare    float64
	OutlineShare float64
	KeyedShare   float64
	Luminance    LuminanceStats
}

const analyzeMaxSamples = 12000

// Analyze measures img under opt. It never adjusts opt; thresholds
// stay whatever the caller configured. clusterCount values below 1
// fall back to 6.
func Analyze(img image.Image, opt Options, clusterCount int) (*FrameAnalysis, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if clusterCount < 1 {
		clusterCount = 6
	}
	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	a := &FrameAnalysis{Width: w, Height: h}

	var domCol colorful.Color
	hasDominant := false
	if cands := dominantcolor.FindWeight(src, max(8, clusterCount)); len(cands) > 0 {
		best := 0
		for i := 1; i < len(cands); i++ {
			if cands[i].Weight > cands[best].Weight {
				best = i
			}
		}
		c := cands[best].RGBA
		a.Dominant = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
		domCol, hasDominant = colorful.MakeColor(a.Dominant)
		if hasDominant {
			a.DominantHex = domCol.Hex()
		}
	}

	fill := ClassifyFill(src, opt.Fill)
	outline := ClassifyOutline(src, opt.Outline)
	keyed := 0
	for y := range h {
		row := src.Pix[y*src.Stride:]
		for x := range w {
			off := x * 4
			if opt.KeyStandard.Matches(int(row[off]), int(row[off+1]), int(row[off+2])) {
				keyed++
			}
		}
	}
	total := float64(w * h)
	a.FillShare = float64(fill.Count()) / total
	a.OutlineShare = float64(outline.Count()) / total
	a.KeyedShare = float64(keyed) / total

	dilated := fill.Dilate(opt.DilateIterations, opt.DilateNoise)
	lums := make([]float64, 0, dilated.Count())
	for y := range h {
		row := src.Pix[y*src.Stride:]
		for x := range w {
			if dilated.Pix[maskOffset(w, x, y)] > 128 {
				off := x * 4
				lums = append(lums, 0.299*float64(row[off])+0.587*float64(row[off+1])+0.114*float64(row[off+2]))
			}
		}
	}
	if n := len(lums); n > 0 {
		a.Luminance = LuminanceStats{
			Mean:    stat.Mean(lums, nil),
			Min:     floats.Min(lums),
			Max:     floats.Max(lums),
			Samples: n,
		}
		if n > 1 {
			a.Luminance.StdDev = stat.StdDev(lums, nil)
		}
	}

	// Subsample opaque pixels to keep kmeans tractable on large frames.
	step := 1
	if w*h > analyzeMaxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(analyzeMaxSamples))) + 1
	}
	b := src.Bounds()
	dataset := make(clusters.Observations, 0, min(w*h, analyzeMaxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := src.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		// Fully transparent frame, coverage numbers are all that apply.
		return a, nil
	}

	k := min(clusterCount, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("cluster colors: %w", err)
	}
	slices.SortFunc(cc, func(ca, cb clusters.Cluster) int {
		return len(cb.Observations) - len(ca.Observations)
	})

	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		cr := uint8(max(0, min(255, col.R*255)))
		cg := uint8(max(0, min(255, col.G*255)))
		cb := uint8(max(0, min(255, col.B*255)))
		cs := ClusterStat{
			Color: color.NRGBA{R: cr, G: cg, B: cb, A: 255},
			Hex:   col.Hex(),
			Share: float64(len(c.Observations)) / float64(len(dataset)),
			Fill:  opt.Fill.Matches(int(cr), int(cg), int(cb)),
			Keyed: opt.KeyStandard.Matches(int(cr), int(cg), int(cb)),
		}
		if hasDominant {
			cs.DistLab = col.DistanceLab(domCol)
		}
		a.Clusters = append(a.Clusters, cs)
	}
	return a, nil
}
