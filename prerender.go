package retexture

import "image"

// Prerendered bundles the per-frame artifacts a client needs to
// composite textures later without rerunning classification: the
// dilated fill mask, the outline mask, the shading field in its byte
// encoding, and the frame with its background removed. Everything
// stays at the frame's native resolution.
type Prerendered struct {
	Fill    *Mask
	Outline *Mask
	Shading *image.Gray
	Base    *image.NRGBA
}

// Prerender produces the artifact set for one frame. Shading is
// extracted from the source frame under the dilated fill mask. The
// base gets the standard key pass and then the aggressive pass, which
// is stronger than what Process applies when no texture is configured.
func (p *Pipeline) Prerender(frame Frame) (*Prerendered, error) {
	if frame.Image == nil {
		return nil, &StageError{Frame: frame.Index, Stage: StageDecode, Err: ErrNilImage}
	}
	src := asNRGBA(frame.Image)

	fill := ClassifyFill(src, p.opt.Fill).Dilate(p.opt.DilateIterations, p.opt.DilateNoise)
	outline := ClassifyOutline(src, p.opt.Outline)
	shading := ExtractShading(src, fill, p.opt.ShadingMin, p.opt.ShadingMax)

	base := RemoveBackground(src, p.opt.KeyStandard)
	base = RemoveBackground(base, p.opt.KeyAggressive)

	return &Prerendered{
		Fill:    fill,
		Outline: outline,
		Shading: shading.Encode(),
		Base:    base,
	}, nil
}
