package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/cascadeview/internal/config"
	"github.com/Faultbox/cascadeview/internal/engine/debug"
	"github.com/Faultbox/cascadeview/internal/engine/input"
	"github.com/Faultbox/cascadeview/internal/engine/mesh"
	"github.com/Faultbox/cascadeview/internal/engine/scene"
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/internal/engine/window"
	"github.com/Faultbox/cascadeview/internal/logger"
)

const title = "Cascaded Shadow Maps"

// overlayColors matches the cascade tints of the lit shader.
var overlayColors = [4][4]float32{
	{1.0, 0.4, 0.4, 1},
	{0.4, 1.0, 0.4, 1},
	{0.4, 0.4, 1.0, 1},
	{1.0, 1.0, 0.4, 1},
}

// Session owns the window, GPU resources and viewer state.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	window     *window.Window
	input      *input.Input
	dispatcher *input.Dispatcher

	scene    *scene.Scene
	device   *scene.GLDevice
	renderer *scene.Renderer
	overlay  []*mesh.Object
	capture  *debug.ScreenshotCapture

	state *State
}

// New creates the window and every GPU resource the viewer needs.
func New(cfg *config.Config) (*Session, error) {
	s := &Session{
		cfg: cfg,
		log: logger.Named("viewer"),
	}

	var err error
	s.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	s.log.Info("viewer initialized")
	return s, nil
}

func (s *Session) init() error {
	cfg := s.cfg
	width, height := s.window.DrawableSize()

	var err error
	s.device, err = scene.NewGLDevice(int32(cfg.Shadows.Resolution), width, height)
	if err != nil {
		s.log.Error("shadow resources unavailable", zap.Error(err))
		return err
	}
	s.device.CheckErrors = cfg.Debug.CheckGLErrors

	sceneCfg := scene.DefaultConfig()
	sceneCfg.GroundTexture = cfg.Scene.GroundTexture
	sceneCfg.GroundSize = cfg.Scene.GroundSize
	sceneCfg.GridSize = cfg.Scene.GridSize
	sceneCfg.Spacing = cfg.Scene.Spacing
	s.scene, err = scene.New(sceneCfg)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}

	s.renderer = scene.NewRenderer(s.device, scene.Options{
		ShadowsEnabled:      cfg.Shadows.Enabled,
		TightenBounds:       cfg.Shadows.TightenBounds,
		TintCascades:        cfg.Shadows.TintCascades,
		PolygonOffsetFactor: cfg.Shadows.PolygonOffsetFactor,
		PolygonOffsetUnits:  cfg.Shadows.PolygonOffsetUnits,
	})

	s.state, err = NewState(cfg, &s.renderer.Options, s.scene.Bounds, s.log)
	if err != nil {
		return err
	}
	s.state.Resize(width, height)

	for i := 0; i < config.MaxCascades; i++ {
		obj, err := mesh.NewLineBuffer(fmt.Sprintf("cascade%d-lines", i), 2*debug.WireframeVertexCount)
		if err != nil {
			return err
		}
		obj.Diffuse = overlayColors[i%len(overlayColors)]
		s.overlay = append(s.overlay, obj)
	}

	s.capture = debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "csm")
	s.input = input.New()
	s.dispatcher = input.NewDispatcher(sdl.BUTTON_LEFT)
	s.state.Bind(s.dispatcher, func(int, int) {
		s.device.Resize(s.window.DrawableSize())
	})
	return nil
}

// State returns the viewer state.
func (s *Session) State() *State {
	return s.state
}

// Run drives the frame loop until a quit command or a render error.
func (s *Session) Run() error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	var frameBudget time.Duration
	if s.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(s.cfg.Graphics.FPSLimit)
	}

	s.log.Info("starting frame loop")
	for s.state.Running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		s.input.Update()
		s.dispatcher.Dispatch(s.input.Events())
		if !s.state.Running {
			break
		}

		if err := s.state.Update(float32(dt), s.dispatcher.Held); err != nil {
			return err
		}
		if err := s.render(); err != nil {
			s.log.Error("render failed", zap.Error(err))
			return fmt.Errorf("render error: %w", err)
		}
		s.saveScreenshot()
		s.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			fps := float64(frameCount) / elapsed.Seconds()
			s.window.SetTitle(fmt.Sprintf("%s - %d cascades - %.0f fps", title, s.state.Splits.Count(), fps))
			s.log.Debug("fps", zap.Float64("fps", fps), zap.Float64("dtMs", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if rest := frameBudget - time.Since(now); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
	return nil
}

func (s *Session) render() error {
	st := s.state
	if cascade, ok := st.TakeDepthDump(); ok {
		s.renderer.CaptureDepth(cascade, s.saveDepth)
	}

	var overlay []*mesh.Object
	if st.ShowFrusta {
		overlay = s.updateOverlay()
	}

	return s.renderer.RenderFrame(scene.Frame{
		Camera:     st.Camera,
		Light:      st.Light,
		Lights:     st.Lights,
		LightIndex: shadowLight,
		Splits:     st.Splits,
		Objects:    s.scene.Objects,
		Overlay:    overlay,
	})
}

// updateOverlay refreshes the cascade wireframes from the current camera.
func (s *Session) updateOverlay() []*mesh.Object {
	st := s.state
	n := min(st.Splits.Count(), len(s.overlay))
	for i := 0; i < n; i++ {
		lines := CascadeLines(st, i)
		s.overlay[i].SetLines(lines)
	}
	return s.overlay[:n]
}

// CascadeLines returns the wireframe of cascade i, plus its bounding box
// when crop bounds are tightened.
func CascadeLines(st *State, i int) []float32 {
	corners := shadow.CascadeCorners(st.Camera, st.Splits, i)
	lines := debug.FrustumLines(corners)
	if st.Options.TightenBounds {
		lines = debug.AppendBoxLines(lines, corners.Bounds(), 0)
	}
	return lines
}

func (s *Session) saveDepth(cascade int) {
	sm := s.device.ShadowMap()
	if !sm.IsValid() {
		s.log.Warn("depth dump skipped, no shadow target", zap.Int("cascade", cascade))
		return
	}
	name, err := s.capture.CaptureDepth(sm.ReadDepth(), int(sm.Resolution), cascade)
	if err != nil {
		s.log.Error("depth dump failed", zap.Int("cascade", cascade), zap.Error(err))
		return
	}
	s.log.Info("depth dump saved", zap.Int("cascade", cascade), zap.String("file", name))
}

func (s *Session) saveScreenshot() {
	if !s.state.TakeScreenshot() {
		return
	}
	pixels, w, h := s.device.ReadPixels()
	name, err := s.capture.CaptureFromPixels(pixels, w, h)
	if err != nil {
		s.log.Error("screenshot failed", zap.Error(err))
		return
	}
	s.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases GPU resources and the window.
func (s *Session) Close() {
	s.log.Info("closing viewer")

	for _, obj := range s.overlay {
		obj.Destroy()
	}
	s.overlay = nil
	if s.scene != nil {
		s.scene.Destroy()
	}
	if s.device != nil {
		s.device.Destroy()
	}
	if s.window != nil {
		s.window.Close()
	}
}
