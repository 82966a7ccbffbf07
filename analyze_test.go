package retexture_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/setanarut/retexture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadrantFrame is half chroma green, a quarter sprite body and a
// quarter near-black, so every coverage share is exact.
func quadrantFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			switch {
			case x < 20:
				img.SetNRGBA(x, y, color.NRGBA{R: 22, G: 187, B: 0, A: 255})
			case y < 20:
				img.SetNRGBA(x, y, color.NRGBA{R: 230, G: 170, B: 50, A: 255})
			default:
				img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
			}
		}
	}
	return img
}

func TestAnalyzeCoverage(t *testing.T) {
	a, err := retexture.Analyze(quadrantFrame(), retexture.DefaultOptions(), 3)
	require.NoError(t, err)

	assert.Equal(t, 40, a.Width)
	assert.Equal(t, 40, a.Height)
	assert.InDelta(t, 0.5, a.KeyedShare, 1e-9)
	assert.InDelta(t, 0.25, a.FillShare, 1e-9)
	assert.InDelta(t, 0.25, a.OutlineShare, 1e-9)

	// Half the frame is chroma green, so the dominant color is green.
	assert.NotEmpty(t, a.DominantHex)
	assert.Greater(t, int(a.Dominant.G), int(a.Dominant.R))
	assert.Greater(t, int(a.Dominant.G), int(a.Dominant.B))

	// Luminance runs under the grown fill mask, which is strictly
	// larger than the raw body quarter.
	lu := a.Luminance
	require.Greater(t, lu.Samples, 400)
	assert.LessOrEqual(t, lu.Min, lu.Mean)
	assert.LessOrEqual(t, lu.Mean, lu.Max)
	assert.GreaterOrEqual(t, lu.StdDev, 0.0)
	assert.GreaterOrEqual(t, lu.Min, 0.0)
	assert.LessOrEqual(t, lu.Max, 255.0)
}

func TestAnalyzeClusters(t *testing.T) {
	a, err := retexture.Analyze(quadrantFrame(), retexture.DefaultOptions(), 3)
	require.NoError(t, err)

	require.NotEmpty(t, a.Clusters)
	require.LessOrEqual(t, len(a.Clusters), 3)

	sum := 0.0
	keyed := false
	for _, c := range a.Clusters {
		sum += c.Share
		keyed = keyed || c.Keyed
		assert.True(t, strings.HasPrefix(c.Hex, "#"), "cluster hex %q", c.Hex)
		assert.Len(t, c.Hex, 7)
		assert.GreaterOrEqual(t, c.DistLab, 0.0)
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "cluster shares cover every sample")
	assert.True(t, keyed, "at least one cluster center should read as background")
	assert.GreaterOrEqual(t, a.Clusters[0].Share, a.Clusters[len(a.Clusters)-1].Share,
		"clusters come largest first")
}

func TestAnalyzeDefaultClusterCount(t *testing.T) {
	a, err := retexture.Analyze(quadrantFrame(), retexture.DefaultOptions(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, a.Clusters)
	assert.LessOrEqual(t, len(a.Clusters), 6)
}

func TestAnalyzeTinyFrame(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	// Fewer pixels than requested clusters caps k at the sample count.
	a, err := retexture.Analyze(img, retexture.DefaultOptions(), 6)
	require.NoError(t, err)
	require.NotEmpty(t, a.Clusters)
	assert.LessOrEqual(t, len(a.Clusters), 4)
}

func TestAnalyzeTransparentFrame(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	a, err := retexture.Analyze(img, retexture.DefaultOptions(), 3)
	require.NoError(t, err)

	// No opaque pixels to cluster, but coverage still applies: zeroed
	// channels read as outline everywhere.
	assert.Empty(t, a.Clusters)
	assert.Equal(t, 0, a.Luminance.Samples)
	assert.InDelta(t, 0.0, a.KeyedShare, 1e-9)
	assert.InDelta(t, 0.0, a.FillShare, 1e-9)
	assert.InDelta(t, 1.0, a.OutlineShare, 1e-9)
}

func TestAnalyzeRejectsNil(t *testing.T) {
	_, err := retexture.Analyze(nil, retexture.DefaultOptions(), 3)
	require.ErrorIs(t, err, retexture.ErrNilImage)
}

func TestAnalyzeRejectsBadOptions(t *testing.T) {
	opt := retexture.DefaultOptions()
	opt.ShadingMin = 2
	_, err := retexture.Analyze(quadrantFrame(), opt, 3)
	require.Error(t, err)
}
