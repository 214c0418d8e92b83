package effect

import "context"

// ImageSource is the host side of a clip.
type ImageSource interface {
	// FetchImage returns the clip's image at time t. When window is not
	// nil the host may restrict the returned bounds to it. A nil image
	// with a nil error means nothing is connected.
	FetchImage(ctx context.Context, t float64, window *RectI) (*Image, error)

	RegionOfDefinition(t float64) RectD
	PixelComponents() PixelComponents
	PixelDepth() BitDepth
	PreMultiplication() PreMultiplication
}

// Clip is an instance's view of one input or output.
type Clip struct {
	desc *ClipDescriptor
	src  ImageSource
}

// NewClip binds a clip descriptor to a host source. src may be nil.
func NewClip(desc *ClipDescriptor, src ImageSource) *Clip {
	return &Clip{desc: desc, src: src}
}

func (c *Clip) Name() string { return c.desc.name }

func (c *Clip) Descriptor() *ClipDescriptor { return c.desc }

// IsConnected reports whether the host has attached anything to the clip.
func (c *Clip) IsConnected() bool { return c != nil && c.src != nil }

// Connect attaches src. Hosts call this; plugins never do.
func (c *Clip) Connect(src ImageSource) { c.src = src }

func (c *Clip) PixelComponents() PixelComponents {
	if !c.IsConnected() {
		return PixelComponentNone
	}
	return c.src.PixelComponents()
}

func (c *Clip) PixelDepth() BitDepth {
	if !c.IsConnected() {
		return BitDepthNone
	}
	return c.src.PixelDepth()
}

func (c *Clip) PreMultiplication() PreMultiplication {
	if !c.IsConnected() {
		return PreMultOpaque
	}
	return c.src.PreMultiplication()
}

// FetchImage returns the image at t, or nil when unconnected.
func (c *Clip) FetchImage(ctx context.Context, t float64) (*Image, error) {
	if !c.IsConnected() {
		return nil, nil
	}
	return c.src.FetchImage(ctx, t, nil)
}

// FetchImageWindow is FetchImage restricted to window.
func (c *Clip) FetchImageWindow(ctx context.Context, t float64, window RectI) (*Image, error) {
	if !c.IsConnected() {
		return nil, nil
	}
	return c.src.FetchImage(ctx, t, &window)
}

// RegionOfDefinition returns the clip's RoD, or an empty rect when unconnected.
func (c *Clip) RegionOfDefinition(t float64) RectD {
	if !c.IsConnected() {
		return RectD{}
	}
	return c.src.RegionOfDefinition(t)
}
