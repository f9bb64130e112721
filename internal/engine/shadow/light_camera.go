package shadow

import (
	"fmt"

	"github.com/Faultbox/cascadeview/internal/engine/camera"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// LightMode selects how the shadow-casting light is placed each frame.
type LightMode int

const (
	// LightStatic is a fixed directional light.
	LightStatic LightMode = iota
	// LightOrbit is a directional light circling the target around Y.
	LightOrbit
	// LightPoint mimics a point light with a perspective light camera.
	LightPoint
)

// String returns the config name of the mode.
func (m LightMode) String() string {
	switch m {
	case LightStatic:
		return "static"
	case LightOrbit:
		return "orbit"
	case LightPoint:
		return "point"
	default:
		return fmt.Sprintf("LightMode(%d)", int(m))
	}
}

// ParseLightMode parses a config name into a LightMode.
func ParseLightMode(s string) (LightMode, error) {
	switch s {
	case "static", "":
		return LightStatic, nil
	case "orbit":
		return LightOrbit, nil
	case "point":
		return LightPoint, nil
	default:
		return 0, fmt.Errorf("unknown light mode %q", s)
	}
}

// LightConfig describes a light rig.
type LightConfig struct {
	Mode       LightMode
	Position   math.Vec3 // initial position; for directional modes only the direction from Target matters
	Target     math.Vec3
	OrbitSpeed float32 // radians per second, orbit mode
	FOV        float32 // radians, point mode
	Near       float32 // point mode
	Far        float32 // point mode
}

// LightRig owns the light camera and keeps it placed according to its mode.
type LightRig struct {
	Mode       LightMode
	Target     math.Vec3
	OrbitSpeed float32

	Camera *camera.Camera

	offset math.Vec3 // initial Position - Target
	angle  float32
	scene  AABB
}

// NewLightRig creates the light camera. Directional modes start with a unit
// orthographic volume until FitScene sizes it.
func NewLightRig(cfg LightConfig) (*LightRig, error) {
	offset := cfg.Position.Sub(cfg.Target)
	if offset.Length() == 0 {
		return nil, fmt.Errorf("light position coincides with target")
	}

	camCfg := camera.Config{
		Position:  cfg.Position,
		Reference: cfg.Target,
		Up:        lightUp(offset.Normalize()),
		Aspect:    1,
	}
	if cfg.Mode == LightPoint {
		camCfg.Projection = camera.Perspective
		camCfg.FOV = cfg.FOV
		camCfg.Near = cfg.Near
		camCfg.Far = cfg.Far
	} else {
		camCfg.Projection = camera.Orthographic
		camCfg.OrthoSize = 1
		camCfg.Near = 0.1
		camCfg.Far = 2
	}

	cam, err := camera.New(camCfg)
	if err != nil {
		return nil, fmt.Errorf("light camera: %w", err)
	}

	return &LightRig{
		Mode:       cfg.Mode,
		Target:     cfg.Target,
		OrbitSpeed: cfg.OrbitSpeed,
		Camera:     cam,
		offset:     offset,
	}, nil
}

// Direction returns the unit vector from the lit scene towards the light.
func (r *LightRig) Direction() math.Vec3 {
	return r.Camera.Forward().Neg()
}

// Position4 returns the light position in shader form: w=0 carries a
// direction for directional modes, w=1 a world position for point mode.
func (r *LightRig) Position4() math.Vec4 {
	if r.Mode == LightPoint {
		return r.Camera.Position.Vec4(1)
	}
	return r.Direction().Vec4(0)
}

// FitScene sizes a directional light's orthographic volume so the whole
// scene fits, keeping the light on its current direction.
func (r *LightRig) FitScene(bounds AABB) error {
	r.scene = bounds
	return r.place()
}

// Update advances the light by dt seconds and recomputes its view.
func (r *LightRig) Update(dt float32) error {
	if r.Mode == LightOrbit {
		r.angle += r.OrbitSpeed * dt
	}
	return r.place()
}

// ViewProjection returns the light's base projection * view.
func (r *LightRig) ViewProjection() math.Mat4 {
	return r.Camera.ViewProjection()
}

func (r *LightRig) place() error {
	offset := r.offset
	if r.angle != 0 {
		offset = math.RotateY(r.angle).TransformDirection(offset)
	}
	dir := offset.Normalize()

	if r.Mode == LightPoint {
		r.Camera.Position = r.Target.Add(offset)
		r.Camera.Reference = r.Target
		r.Camera.Up = lightUp(dir)
		return nil
	}

	// Directional light: stand far enough back along dir to encompass the scene.
	center := r.Target
	radius := float32(1)
	if r.scene != (AABB{}) {
		center = r.scene.Center()
		radius = max(r.scene.Radius(), 1)
	}
	distance := radius * 2

	r.Camera.Position = center.Add(dir.Scale(distance))
	r.Camera.Reference = center
	r.Camera.Up = lightUp(dir)

	// Padding avoids edge artifacts
	padding := radius * 0.1
	if err := r.Camera.SetOrthoSize(radius + padding); err != nil {
		return err
	}
	return r.Camera.SetClip(0.1, distance+radius+padding)
}

// lightUp picks an up vector that is not parallel to the light direction.
func lightUp(dir math.Vec3) math.Vec3 {
	if abs32(dir.Y) > 0.99 {
		return math.Vec3{X: 0, Y: 0, Z: 1}
	}
	return math.Vec3{X: 0, Y: 1, Z: 0}
}

// abs32 returns the absolute value of a float32.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
