package effect

import (
	"errors"
	"testing"
)

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Descriptor
		ctx   Context
		want  error
	}{
		{
			name:  "filter ok",
			build: testDescriptor,
			ctx:   ContextFilter,
		},
		{
			name:  "unsupported context",
			build: testDescriptor,
			ctx:   ContextGenerator,
			want:  ErrUnsupportedContext,
		},
		{
			name: "no output",
			build: func() *Descriptor {
				d := NewDescriptor("x", 1, 0)
				d.AddSupportedContext(ContextGenerator)
				return d
			},
			ctx:  ContextGenerator,
			want: ErrInvalidDescriptor,
		},
		{
			name: "filter without source",
			build: func() *Descriptor {
				d := NewDescriptor("x", 1, 0)
				d.AddSupportedContext(ContextFilter)
				d.DefineClip(ClipOutput)
				return d
			},
			ctx:  ContextFilter,
			want: ErrInvalidDescriptor,
		},
		{
			name: "reader without filename",
			build: func() *Descriptor {
				d := NewDescriptor("x", 1, 0)
				d.AddSupportedContext(ContextReader)
				d.DefineClip(ClipOutput)
				return d
			},
			ctx:  ContextReader,
			want: ErrInvalidDescriptor,
		},
		{
			name: "reader ok",
			build: func() *Descriptor {
				d := NewDescriptor("x", 1, 0)
				d.AddSupportedContext(ContextReader)
				d.AddSupportedContext(ContextGeneral)
				d.DefineClip(ClipOutput)
				d.DefineStringParam("filename").SetStringType(StringFilePath)
				return d
			},
			ctx: ContextGeneral,
		},
		{
			name: "choice default out of range",
			build: func() *Descriptor {
				d := testDescriptor()
				d.Param("mode").(*ChoiceParamDescriptor).SetDefault(3)
				return d
			},
			ctx:  ContextFilter,
			want: ErrInvalidDescriptor,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate(tt.ctx)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate(%s) = %v, want nil", tt.ctx, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%s) = %v, want %v", tt.ctx, err, tt.want)
			}
		})
	}
}

func TestDescriptorDuplicatePanics(t *testing.T) {
	d := NewDescriptor("x", 1, 0)
	d.DefineDoubleParam("a")
	defer func() {
		if recover() == nil {
			t.Error("defining a parameter twice did not panic")
		}
	}()
	d.DefineIntParam("a")
}

func TestDescriptorDefaults(t *testing.T) {
	d := NewDescriptor("x", 2, 3)
	if major, minor := d.Version(); major != 2 || minor != 3 {
		t.Errorf("Version = %d.%d, want 2.3", major, minor)
	}
	if !d.SupportsTiles() {
		t.Error("SupportsTiles default = false")
	}
	if !d.SupportsRenderScale() {
		t.Error("SupportsRenderScale default = false")
	}
	d.AddSupportedContext(ContextFilter)
	d.AddSupportedContext(ContextFilter)
	if got := len(d.SupportedContexts()); got != 1 {
		t.Errorf("contexts = %d, want 1", got)
	}
}

func TestPageChildren(t *testing.T) {
	d := NewDescriptor("x", 1, 0)
	page := d.DefinePageParam("Controls")
	g := d.DefineGroupParam("Transform")
	a := d.DefineDoubleParam("rotate")
	SetParent(a, g)
	page.AddChild(a)
	page.AddChild(g)

	if got := a.Parent(); got != "Transform" {
		t.Errorf("Parent = %q, want Transform", got)
	}
	if got := page.Children(); len(got) != 2 || got[0] != "rotate" {
		t.Errorf("Children = %v", got)
	}
}
