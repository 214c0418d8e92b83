package effect

import (
	"context"
	"fmt"
	"sync"
)

// HostDescription is what a plugin may learn about the host at describe
// and instance time.
type HostDescription struct {
	Name                     string
	IsNatron                 bool
	NumCPUs                  int
	SupportsCascadingChoices bool
	SupportsMultiResolution  bool
	SupportsTiles            bool
}

// Factory describes a plugin and creates its instances.
type Factory interface {
	Identifier() string
	Version() (major, minor int)

	// Load is called once before any other method.
	Load() error

	// Describe declares context-independent properties.
	Describe(d *Descriptor)

	// DescribeInContext defines clips and parameters for ctx.
	DescribeInContext(d *Descriptor, ctx Context, host HostDescription) error

	// CreateInstance builds an instance bound to h.
	CreateInstance(h *Handle, ctx Context) (Instance, error)
}

// RenderArgs are the arguments of a render call.
type RenderArgs struct {
	Time         float64
	RenderWindow RectI
	RenderScale  Scale
	Field        Field
	Draft        bool
}

// RegionOfDefinitionArgs are the arguments of a region-of-definition call.
type RegionOfDefinitionArgs struct {
	Time        float64
	RenderScale Scale
}

// IsIdentityArgs are the arguments of an identity query.
type IsIdentityArgs struct {
	Time         float64
	RenderWindow RectI
	RenderScale  Scale
	Field        Field
}

// IdentityResult names the clip and time to pass through.
type IdentityResult struct {
	Identity bool
	Clip     string
	Time     float64
}

// InstanceChangedArgs describe why a parameter changed.
type InstanceChangedArgs struct {
	Reason      ChangeReason
	Time        float64
	RenderScale Scale
}

// Instance is a live effect.
type Instance interface {
	Render(ctx context.Context, args RenderArgs) error

	// RegionOfDefinition returns the output extent in canonical
	// coordinates. ok=false asks the host to use its default.
	RegionOfDefinition(args RegionOfDefinitionArgs) (rod RectD, ok bool, err error)
}

// IdentityChecker is implemented by instances that can skip rendering.
type IdentityChecker interface {
	IsIdentity(args IsIdentityArgs) (IdentityResult, error)
}

// ParamChangeHandler is implemented by instances that react to edits.
type ParamChangeHandler interface {
	ChangedParam(args InstanceChangedArgs, name string) error
}

// ClipPreferences lets an instance override output properties.
type ClipPreferences struct {
	OutputComponents PixelComponents
	OutputPremult    PreMultiplication
	OutputDepth      BitDepth
	PixelAspect      float64
}

// ClipPreferencer is implemented by instances that set clip preferences.
type ClipPreferencer interface {
	ClipPreferences(p *ClipPreferences)
}

// Closer is implemented by instances holding resources.
type Closer interface {
	Close() error
}

// Message is a persistent message attached to an instance.
type Message struct {
	Type MessageType
	Text string
}

// Handle is an instance's access to its host: parameters, clips and the
// message area.
type Handle struct {
	ctx    Context
	host   HostDescription
	desc   *Descriptor
	params *ParamSet
	clips  map[string]*Clip

	msgMu sync.Mutex
	msg   *Message
}

// NewHandle is called by hosts.
func NewHandle(desc *Descriptor, ctx Context, host HostDescription, params *ParamSet, clips []*Clip) *Handle {
	h := &Handle{
		ctx:    ctx,
		host:   host,
		desc:   desc,
		params: params,
		clips:  make(map[string]*Clip, len(clips)),
	}
	for _, c := range clips {
		h.clips[c.Name()] = c
	}
	return h
}

func (h *Handle) Context() Context              { return h.ctx }
func (h *Handle) Host() HostDescription         { return h.host }
func (h *Handle) Descriptor() *Descriptor       { return h.desc }
func (h *Handle) Params() *ParamSet             { return h.params }

func (h *Handle) DoubleParam(n string) *DoubleParam     { return h.params.DoubleParam(n) }
func (h *Handle) Double2DParam(n string) *Double2DParam { return h.params.Double2DParam(n) }
func (h *Handle) Double3DParam(n string) *Double3DParam { return h.params.Double3DParam(n) }
func (h *Handle) IntParam(n string) *IntParam           { return h.params.IntParam(n) }
func (h *Handle) Int2DParam(n string) *Int2DParam       { return h.params.Int2DParam(n) }
func (h *Handle) BooleanParam(n string) *BooleanParam   { return h.params.BooleanParam(n) }
func (h *Handle) ChoiceParam(n string) *ChoiceParam     { return h.params.ChoiceParam(n) }
func (h *Handle) StringParam(n string) *StringParam     { return h.params.StringParam(n) }
func (h *Handle) RGBAParam(n string) *RGBAParam         { return h.params.RGBAParam(n) }
func (h *Handle) RGBParam(n string) *RGBParam           { return h.params.RGBParam(n) }

// Clip returns the named clip. Fetching an undefined clip panics.
func (h *Handle) Clip(name string) *Clip {
	c, ok := h.clips[name]
	if !ok {
		panic(fmt.Sprintf("effect: clip %q not defined", name))
	}
	return c
}

// HasClip reports whether a clip with that name was defined.
func (h *Handle) HasClip(name string) bool {
	_, ok := h.clips[name]
	return ok
}

// SetPersistentMessage shows text until cleared.
func (h *Handle) SetPersistentMessage(t MessageType, text string) {
	h.msgMu.Lock()
	h.msg = &Message{Type: t, Text: text}
	h.msgMu.Unlock()
}

// ClearPersistentMessage removes the current message, if any.
func (h *Handle) ClearPersistentMessage() {
	h.msgMu.Lock()
	h.msg = nil
	h.msgMu.Unlock()
}

// PersistentMessage returns the current message.
func (h *Handle) PersistentMessage() (Message, bool) {
	h.msgMu.Lock()
	defer h.msgMu.Unlock()
	if h.msg == nil {
		return Message{}, false
	}
	return *h.msg, true
}

// Fail records msg as a persistent error and returns the matching
// StatusError. An empty msg leaves the message area untouched.
func (h *Handle) Fail(s Status, msg string) error {
	if msg != "" {
		h.SetPersistentMessage(MessageError, msg)
	}
	return &StatusError{Status: s, Message: msg}
}

// Failf is Fail with a wrapped cause.
func (h *Handle) Failf(s Status, err error, msg string) error {
	if msg != "" {
		h.SetPersistentMessage(MessageError, msg)
	}
	return &StatusError{Status: s, Message: msg, Err: err}
}
