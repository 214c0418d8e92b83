package memhost

import (
	"context"

	"github.com/fxarena/arena/effect"
)

// imageSource serves a connected input image.
type imageSource struct {
	e   *Effect
	img *effect.Image
}

func (s *imageSource) FetchImage(ctx context.Context, t float64, window *effect.RectI) (*effect.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := *s.img
	img.RenderScale = s.e.host.scale
	img.Field = effect.FieldNone
	return &img, nil
}

func (s *imageSource) RegionOfDefinition(t float64) effect.RectD {
	return s.img.RoD.ToCanonical(s.e.host.scale, s.img.PixelAspect)
}

func (s *imageSource) PixelComponents() effect.PixelComponents { return s.img.Components }

func (s *imageSource) PixelDepth() effect.BitDepth { return s.img.Depth }

func (s *imageSource) PreMultiplication() effect.PreMultiplication { return s.img.Premult }

// outputSource hands the image being rendered to the instance.
type outputSource struct {
	e   *Effect
	img *effect.Image
}

func (s *outputSource) FetchImage(ctx context.Context, t float64, window *effect.RectI) (*effect.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.img, nil
}

func (s *outputSource) RegionOfDefinition(t float64) effect.RectD {
	if s.img != nil {
		return s.img.RoD.ToCanonical(s.e.host.scale, s.img.PixelAspect)
	}
	return s.e.host.project
}

func (s *outputSource) PixelComponents() effect.PixelComponents { return s.e.prefs.OutputComponents }

func (s *outputSource) PixelDepth() effect.BitDepth { return effect.BitDepthFloat }

func (s *outputSource) PreMultiplication() effect.PreMultiplication { return s.e.prefs.OutputPremult }
