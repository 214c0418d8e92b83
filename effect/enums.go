package effect

// Context is the situation an effect is instantiated in.
type Context uint8

const (
	// ContextGeneral is an effect with any number of inputs.
	ContextGeneral Context = iota
	// ContextFilter is an effect with a single Source input.
	ContextFilter
	// ContextGenerator is an effect without a mandatory input.
	ContextGenerator
	// ContextReader produces images from files.
	ContextReader
)

func (c Context) String() string {
	switch c {
	case ContextGeneral:
		return "General"
	case ContextFilter:
		return "Filter"
	case ContextGenerator:
		return "Generator"
	case ContextReader:
		return "Reader"
	default:
		return "Unknown"
	}
}

// ParseContext maps a context name (case-sensitive, as printed by String)
// back to a Context.
func ParseContext(s string) (Context, bool) {
	for _, c := range []Context{ContextGeneral, ContextFilter, ContextGenerator, ContextReader} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// BitDepth is the sample type of a host image.
type BitDepth uint8

const (
	BitDepthNone BitDepth = iota
	BitDepthUByte
	BitDepthUShort
	BitDepthHalf
	BitDepthFloat
)

func (d BitDepth) String() string {
	switch d {
	case BitDepthUByte:
		return "UByte"
	case BitDepthUShort:
		return "UShort"
	case BitDepthHalf:
		return "Half"
	case BitDepthFloat:
		return "Float"
	default:
		return "None"
	}
}

// MaxValue is the sample value that represents full intensity.
func (d BitDepth) MaxValue() float32 {
	switch d {
	case BitDepthUByte:
		return 255
	case BitDepthUShort:
		return 65535
	default:
		return 1
	}
}

// PixelComponents is the channel layout of a host image.
type PixelComponents uint8

const (
	PixelComponentNone PixelComponents = iota
	PixelComponentRGBA
	PixelComponentRGB
	PixelComponentAlpha
)

// Count returns the number of samples per pixel.
func (c PixelComponents) Count() int {
	switch c {
	case PixelComponentRGBA:
		return 4
	case PixelComponentRGB:
		return 3
	case PixelComponentAlpha:
		return 1
	default:
		return 0
	}
}

func (c PixelComponents) String() string {
	switch c {
	case PixelComponentRGBA:
		return "RGBA"
	case PixelComponentRGB:
		return "RGB"
	case PixelComponentAlpha:
		return "Alpha"
	default:
		return "None"
	}
}

// ThreadSafety declares how the host may call Render concurrently.
type ThreadSafety uint8

const (
	// ThreadSafetyUnsafe allows one render at a time across all instances.
	ThreadSafetyUnsafe ThreadSafety = iota
	// ThreadSafetyInstance allows concurrent renders of different instances.
	ThreadSafetyInstance
	// ThreadSafetyFully allows concurrent renders of the same instance.
	ThreadSafetyFully
)

func (t ThreadSafety) String() string {
	switch t {
	case ThreadSafetyInstance:
		return "InstanceSafe"
	case ThreadSafetyFully:
		return "FullySafe"
	default:
		return "Unsafe"
	}
}

// PreMultiplication describes how color relates to alpha in an image.
type PreMultiplication uint8

const (
	PreMultOpaque PreMultiplication = iota
	PreMultPreMultiplied
	PreMultUnPreMultiplied
)

func (p PreMultiplication) String() string {
	switch p {
	case PreMultPreMultiplied:
		return "PreMultiplied"
	case PreMultUnPreMultiplied:
		return "UnPreMultiplied"
	default:
		return "Opaque"
	}
}

// Field is the interlacing field of a render.
type Field uint8

const (
	FieldNone Field = iota
	FieldBoth
	FieldLower
	FieldUpper
)

// LayoutHint tells a host how to lay out the next parameter.
type LayoutHint uint8

const (
	LayoutHintNormal LayoutHint = iota
	LayoutHintDivider
	LayoutHintNoNewLine
)

// MessageType classifies persistent messages.
type MessageType uint8

const (
	MessageError MessageType = iota
	MessageWarning
	MessageMessage
)

func (m MessageType) String() string {
	switch m {
	case MessageWarning:
		return "warning"
	case MessageMessage:
		return "message"
	default:
		return "error"
	}
}

// StringType is the editing mode of a string parameter.
type StringType uint8

const (
	StringSingleLine StringType = iota
	StringMultiLine
	StringFilePath
	StringDirectoryPath
	StringLabel
)

// DoubleType is a hint about the meaning of a double parameter.
type DoubleType uint8

const (
	DoublePlain DoubleType = iota
	DoubleAngle
	DoubleScale
	DoubleXAbsolute
	DoubleYAbsolute
	DoubleXYAbsolute
)

// CoordinateSystem selects how 2D defaults are interpreted.
type CoordinateSystem uint8

const (
	// CoordinatesCanonical defaults are in canonical pixels.
	CoordinatesCanonical CoordinateSystem = iota
	// CoordinatesNormalised defaults are fractions of the project size.
	CoordinatesNormalised
)

// ChangeReason tells an instance why a parameter changed.
type ChangeReason uint8

const (
	ChangeUserEdit ChangeReason = iota
	ChangePluginEdited
	ChangeTime
)
