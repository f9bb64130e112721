// Package viewer runs the interactive cascaded shadow map viewer.
package viewer

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/cascadeview/internal/config"
	"github.com/Faultbox/cascadeview/internal/engine/camera"
	"github.com/Faultbox/cascadeview/internal/engine/input"
	"github.com/Faultbox/cascadeview/internal/engine/lighting"
	"github.com/Faultbox/cascadeview/internal/engine/scene"
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// shadowLight is the registry index of the shadow-casting light.
const shadowLight = 0

// State is the GL-free part of a session: cameras, lights, cascade splits
// and the toggles driven by input commands.
type State struct {
	Camera *camera.Camera
	Orbit  *camera.Orbit
	Light  *shadow.LightRig
	Lights *lighting.Registry
	Splits shadow.Splits

	// Options is shared with the renderer.
	Options *scene.Options

	Lambda     float32
	ShowFrusta bool
	Running    bool

	screenshot bool
	depthDump  bool
	dumpIndex  int

	log *zap.Logger
}

// NewState builds the cameras, lights and splits described by cfg. The
// directional light volume is fitted to sceneBounds.
func NewState(cfg *config.Config, opts *scene.Options, sceneBounds shadow.AABB, log *zap.Logger) (*State, error) {
	aspect := float32(cfg.Graphics.Width) / float32(cfg.Graphics.Height)
	cam, err := camera.New(camera.Config{
		Position:  math.Vec3FromArray(cfg.Camera.Position),
		Reference: math.Vec3FromArray(cfg.Camera.Target),
		FOV:       math.Radians(cfg.Camera.FOVDegrees),
		Near:      cfg.Camera.Near,
		Far:       cfg.Camera.Far,
		Aspect:    aspect,
	})
	if err != nil {
		return nil, fmt.Errorf("main camera: %w", err)
	}

	mode, err := shadow.ParseLightMode(cfg.Light.Mode)
	if err != nil {
		return nil, err
	}
	target := math.Vec3FromArray(cfg.Light.Target)
	rig, err := shadow.NewLightRig(shadow.LightConfig{
		Mode:       mode,
		Position:   LightPosition(cfg.Light),
		Target:     target,
		OrbitSpeed: cfg.Light.OrbitSpeed,
		FOV:        math.Radians(cfg.Light.FOVDegrees),
		Near:       cfg.Light.Near,
		Far:        cfg.Light.Far,
	})
	if err != nil {
		return nil, err
	}
	if mode != shadow.LightPoint {
		if err := rig.FitScene(sceneBounds); err != nil {
			return nil, fmt.Errorf("fit light to scene: %w", err)
		}
	}

	lights := lighting.NewRegistry()
	if _, err := lights.Add(lighting.Light{
		Position: rig.Position4(),
		Ambient:  cfg.Light.Ambient,
		Diffuse:  cfg.Light.Diffuse,
		Specular: cfg.Light.Specular,
		Enabled:  true,
	}); err != nil {
		return nil, err
	}
	// Unshadowed fill light from the opposite side.
	fill := rig.Direction().Neg()
	fill.Y = max(fill.Y, 0.3)
	if _, err := lights.Add(lighting.Light{
		Position: fill.Normalize().Vec4(0),
		Diffuse:  [3]float32{0.25, 0.25, 0.3},
		Enabled:  true,
	}); err != nil {
		return nil, err
	}

	s := &State{
		Camera:     cam,
		Orbit:      camera.NewOrbit(cam),
		Light:      rig,
		Lights:     lights,
		Options:    opts,
		Lambda:     cfg.Shadows.Lambda,
		ShowFrusta: cfg.Debug.ShowFrusta,
		Running:    true,
		log:        log,
	}
	if err := s.SetCascades(cfg.Shadows.Cascades); err != nil {
		return nil, err
	}
	return s, nil
}

// LightPosition returns the configured light position, or the point along
// azimuth/elevation at the configured distance from the target when no
// position is set.
func LightPosition(cfg config.LightConfig) math.Vec3 {
	if cfg.Position != ([3]float32{}) {
		return math.Vec3FromArray(cfg.Position)
	}
	dir := lighting.SunDirection(cfg.Azimuth, cfg.Elevation)
	return math.Vec3FromArray(cfg.Target).Add(dir.Scale(cfg.Distance))
}

// SetCascades recomputes the split set for n cascades. The current splits
// are kept when n is rejected.
func (s *State) SetCascades(n int) error {
	splits, err := shadow.NewSplitsLambda(s.Camera.Near(), s.Camera.Far(), n, s.Lambda)
	if err != nil {
		return err
	}
	s.Splits = splits
	s.log.Info("cascade splits", zap.Int("count", n), zap.Float32s("depths", splits))
	return nil
}

// ChangeCascades adds delta to the cascade count, staying within
// [1, config.MaxCascades].
func (s *State) ChangeCascades(delta int) {
	n := min(max(s.Splits.Count()+delta, 1), config.MaxCascades)
	if n == s.Splits.Count() {
		return
	}
	if err := s.SetCascades(n); err != nil {
		s.log.Warn("cascade change rejected", zap.Int("count", n), zap.Error(err))
	}
}

// ToggleLight switches light i on or off.
func (s *State) ToggleLight(i int) {
	if !s.Lights.Toggle(i) {
		return
	}
	s.log.Info("light toggled", zap.Int("index", i), zap.Bool("enabled", s.Lights.Enabled(i)))
}

// ToggleShadows switches between cascaded shadows and a plain lit pass.
func (s *State) ToggleShadows() {
	s.Options.ShadowsEnabled = !s.Options.ShadowsEnabled
	s.log.Info("shadows toggled", zap.Bool("enabled", s.Options.ShadowsEnabled))
}

// ToggleBounds switches the crop volume between raw frustum corners and
// their axis-aligned bounding box.
func (s *State) ToggleBounds() {
	s.Options.TightenBounds = !s.Options.TightenBounds
	s.log.Info("bounds variant toggled", zap.Bool("tighten", s.Options.TightenBounds))
}

// ToggleTint switches the per-cascade debug tint.
func (s *State) ToggleTint() {
	s.Options.TintCascades = !s.Options.TintCascades
}

// ToggleFrusta switches the cascade wireframe overlay.
func (s *State) ToggleFrusta() {
	s.ShowFrusta = !s.ShowFrusta
}

// RequestScreenshot saves the next presented frame.
func (s *State) RequestScreenshot() {
	s.screenshot = true
}

// RequestDepthDump saves the shadow depth of one cascade in the next frame.
// Successive requests walk through the cascades.
func (s *State) RequestDepthDump() {
	s.depthDump = true
}

// TakeScreenshot reports and clears a pending screenshot request.
func (s *State) TakeScreenshot() bool {
	pending := s.screenshot
	s.screenshot = false
	return pending
}

// TakeDepthDump reports and clears a pending depth dump request together
// with the cascade to dump.
func (s *State) TakeDepthDump() (cascade int, ok bool) {
	if !s.depthDump {
		return 0, false
	}
	s.depthDump = false
	cascade = s.dumpIndex % s.Splits.Count()
	s.dumpIndex = cascade + 1
	return cascade, true
}

// Quit stops the frame loop.
func (s *State) Quit() {
	s.Running = false
}

// Resize updates the main camera aspect.
func (s *State) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := s.Camera.SetAspect(float32(width) / float32(height)); err != nil {
		s.log.Warn("resize rejected", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
	}
}

// Drag orbits the main camera.
func (s *State) Drag(dx, dy float32) {
	s.Orbit.HandleDrag(dx, dy)
	s.Orbit.Apply(s.Camera)
}

// Zoom moves the main camera towards or away from its orbit center.
func (s *State) Zoom(delta float32) {
	s.Orbit.HandleZoom(delta)
	s.Orbit.Apply(s.Camera)
}

// SetMoving marks the camera as interactively moving.
func (s *State) SetMoving(moving bool) {
	s.Camera.Moving = moving
}

// panKeys maps held keys to forward/right/up pan axes.
var panKeys = []struct {
	key                sdl.Scancode
	forward, right, up float32
}{
	{sdl.SCANCODE_W, 1, 0, 0},
	{sdl.SCANCODE_S, -1, 0, 0},
	{sdl.SCANCODE_D, 0, 1, 0},
	{sdl.SCANCODE_A, 0, -1, 0},
	{sdl.SCANCODE_E, 0, 0, 1},
	{sdl.SCANCODE_Q, 0, 0, -1},
}

// panRate is the pan speed multiplier per second of held key.
const panRate = 60

// Update advances held-key panning and the light by dt seconds.
func (s *State) Update(dt float32, held func(sdl.Scancode) bool) error {
	var forward, right, up float32
	for _, k := range panKeys {
		if held(k.key) {
			forward += k.forward
			right += k.right
			up += k.up
		}
	}
	if forward != 0 || right != 0 || up != 0 {
		s.Orbit.HandleMovement(forward*dt*panRate, right*dt*panRate, up*dt*panRate)
		s.Orbit.Apply(s.Camera)
	}

	if err := s.Light.Update(dt); err != nil {
		return fmt.Errorf("light update: %w", err)
	}
	s.Lights.SetPosition(shadowLight, s.Light.Position4())
	return nil
}

// Bind registers the viewer commands on d. resize, when not nil, runs
// before the camera aspect is updated on a window size change.
func (s *State) Bind(d *input.Dispatcher, resize func(width, height int)) {
	d.OnQuit(s.Quit)
	d.OnResize(func(width, height int) {
		if resize != nil {
			resize(width, height)
		}
		s.Resize(width, height)
	})
	d.OnDrag(s.Drag)
	d.OnDragState(s.SetMoving)
	d.OnWheel(s.Zoom)

	d.OnKey(sdl.SCANCODE_ESCAPE, s.Quit)
	d.OnKey(sdl.SCANCODE_L, func() { s.ToggleLight(shadowLight) })
	for i := 0; i < lighting.MaxLights; i++ {
		d.OnKey(sdl.SCANCODE_1+sdl.Scancode(i), func() { s.ToggleLight(i) })
	}
	d.OnKey(sdl.SCANCODE_EQUALS, func() { s.ChangeCascades(1) })
	d.OnKey(sdl.SCANCODE_KP_PLUS, func() { s.ChangeCascades(1) })
	d.OnKey(sdl.SCANCODE_MINUS, func() { s.ChangeCascades(-1) })
	d.OnKey(sdl.SCANCODE_KP_MINUS, func() { s.ChangeCascades(-1) })
	d.OnKey(sdl.SCANCODE_B, s.ToggleBounds)
	d.OnKey(sdl.SCANCODE_T, s.ToggleTint)
	d.OnKey(sdl.SCANCODE_F, s.ToggleFrusta)
	d.OnKey(sdl.SCANCODE_M, s.ToggleShadows)
	d.OnKey(sdl.SCANCODE_F12, s.RequestScreenshot)
	d.OnKey(sdl.SCANCODE_P, s.RequestScreenshot)
	d.OnKey(sdl.SCANCODE_K, s.RequestDepthDump)
}
