package lighting

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/cascadeview/pkg/math"
)

func TestRegistryAddAndToggle(t *testing.T) {
	r := NewRegistry()
	i, err := r.Add(Light{
		Position: math.Vec4{0, 1, 0, 0},
		Diffuse:  [3]float32{2, 0.5, -1},
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if i != 0 || r.Len() != 1 {
		t.Fatalf("expected index 0 and len 1, got %d and %d", i, r.Len())
	}

	l, _ := r.Get(0)
	if l.Diffuse != [3]float32{1, 0.5, 0} {
		t.Errorf("colors should be clamped to [0,1], got %v", l.Diffuse)
	}
	if !l.Directional() {
		t.Error("w=0 light should be directional")
	}

	if r.Toggle(0) {
		t.Error("first toggle should switch the light off")
	}
	if r.Enabled(0) {
		t.Error("light should report disabled")
	}
	if !r.Toggle(0) {
		t.Error("second toggle should switch the light back on")
	}
	if r.Toggle(5) || r.Enabled(5) {
		t.Error("out of range index should be a no-op")
	}
}

func TestRegistryFull(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < MaxLights; i++ {
		if _, err := r.Add(Light{}); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if _, err := r.Add(Light{}); err != ErrFull {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestRegistryUploadArrays(t *testing.T) {
	r := NewRegistry()
	r.Add(Light{Position: math.Vec4{1, 2, 3, 1}, Ambient: [3]float32{0.1, 0.2, 0.3}, Enabled: true})
	r.Add(Light{Position: math.Vec4{4, 5, 6, 0}, Specular: [3]float32{1, 1, 1}})
	r.SetPosition(1, math.Vec4{7, 8, 9, 0})

	pos := r.Positions()
	if len(pos) != MaxLights*4 {
		t.Fatalf("positions length = %d, want %d", len(pos), MaxLights*4)
	}
	if pos[3] != 1 || pos[4] != 7 || pos[6] != 9 {
		t.Errorf("unexpected positions: %v", pos[:8])
	}

	amb := r.Ambients()
	if amb[0] != 0.1 || amb[2] != 0.3 || amb[3] != 0 {
		t.Errorf("unexpected ambients: %v", amb[:6])
	}
	if spec := r.Speculars(); spec[3] != 1 || spec[0] != 0 {
		t.Errorf("unexpected speculars: %v", spec[:6])
	}

	flags := r.EnabledFlags()
	if flags[0] != 1 || flags[1] != 0 {
		t.Errorf("unexpected enabled flags: %v", flags[:2])
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		azimuth, elevation float32
		want               math.Vec3
	}{
		{0, 90, math.Vec3{X: 0, Y: 1, Z: 0}},
		{0, 0, math.Vec3{X: 0, Y: 0, Z: 1}},
		{90, 0, math.Vec3{X: 1, Y: 0, Z: 0}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.azimuth, tt.elevation)
		if gomath.Abs(float64(got.X-tt.want.X)) > 1e-5 ||
			gomath.Abs(float64(got.Y-tt.want.Y)) > 1e-5 ||
			gomath.Abs(float64(got.Z-tt.want.Z)) > 1e-5 {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.azimuth, tt.elevation, got, tt.want)
		}
	}
}
