package effect

import (
	"context"
	"errors"
	"testing"
)

type stubFactory struct {
	id           string
	major, minor int
}

func (f stubFactory) Identifier() string          { return f.id }
func (f stubFactory) Version() (major, minor int) { return f.major, f.minor }
func (f stubFactory) Load() error                 { return nil }
func (f stubFactory) Describe(d *Descriptor)      {}
func (f stubFactory) DescribeInContext(d *Descriptor, ctx Context, host HostDescription) error {
	return nil
}
func (f stubFactory) CreateInstance(h *Handle, ctx Context) (Instance, error) { return stubInstance{}, nil }

type stubInstance struct{}

func (stubInstance) Render(ctx context.Context, args RenderArgs) error { return nil }
func (stubInstance) RegionOfDefinition(args RegionOfDefinitionArgs) (RectD, bool, error) {
	return RectD{}, false, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, f := range []stubFactory{
		{"net.fxarena.openfx.Text", 6, 9},
		{"net.fxarena.openfx.Text", 5, 7},
		{"net.fxarena.openfx.Polar", 4, 2},
	} {
		if err := r.Register(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Register(stubFactory{"net.fxarena.openfx.Polar", 4, 3}); !errors.Is(err, ErrDuplicatePlugin) {
		t.Errorf("duplicate Register err = %v", err)
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}

	tests := []struct {
		id        string
		major     int
		wantMajor int
		wantErr   bool
	}{
		{"net.fxarena.openfx.Text", 0, 6, false},
		{"net.fxarena.openfx.Text", 5, 5, false},
		{"net.fxarena.openfx.Text", 4, 0, true},
		{"missing", 0, 0, true},
	}
	for _, tt := range tests {
		f, err := r.Lookup(tt.id, tt.major)
		if tt.wantErr {
			if !errors.Is(err, ErrPluginNotFound) {
				t.Errorf("Lookup(%q, %d) err = %v, want ErrPluginNotFound", tt.id, tt.major, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Lookup(%q, %d): %v", tt.id, tt.major, err)
		}
		if major, _ := f.Version(); major != tt.wantMajor {
			t.Errorf("Lookup(%q, %d) major = %d, want %d", tt.id, tt.major, major, tt.wantMajor)
		}
	}

	fs := r.Factories()
	if fs[0].Identifier() != "net.fxarena.openfx.Polar" {
		t.Errorf("Factories()[0] = %s", fs[0].Identifier())
	}
	if major, _ := fs[1].Version(); major != 5 {
		t.Errorf("Factories()[1] major = %d, want 5", major)
	}
	if ids := r.IDs(); len(ids) != 2 {
		t.Errorf("IDs = %v", ids)
	}
}
