package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/cascadeview/internal/engine/camera"
	"github.com/Faultbox/cascadeview/internal/engine/lighting"
	"github.com/Faultbox/cascadeview/internal/engine/mesh"
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// Pass identifies which program a draw call goes through.
type Pass int

const (
	DepthPass Pass = iota
	LitPass
	LinePass
)

func (p Pass) String() string {
	switch p {
	case DepthPass:
		return "depth"
	case LitPass:
		return "lit"
	case LinePass:
		return "line"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

// LitParams are the per-cascade inputs of the lit pass.
type LitParams struct {
	View           math.Mat4
	Projection     math.Mat4
	CameraPosition math.Vec3
	LightCrop      math.Mat4
	LightViewProj  math.Mat4
	LightIndex     int
	Lights         *lighting.Registry
	Shadowed       bool
	Cascade        int
	Tint           bool
}

// Device is the GPU state the cascade loop drives. Implementations own the
// shared shadow depth target and the depth, lit and line programs.
type Device interface {
	// Clear clears color and depth of the default framebuffer.
	Clear()
	// BindShadowTarget binds the shared depth target, sets its viewport and
	// clears its depth to 1.
	BindShadowTarget()
	// BindDefaultTarget binds the window framebuffer with its viewport.
	BindDefaultTarget()
	SetColorWrites(enabled bool)
	SetPolygonOffset(enabled bool, factor, units float32)
	SetDepthRange(near, far float64)
	// BindShadowTexture binds the depth texture as a LEQUAL comparison sampler.
	BindShadowTexture()
	UseDepthProgram(crop, lightViewProj math.Mat4)
	UseLitProgram(p LitParams)
	UseLineProgram(viewProj math.Mat4)
	Draw(obj *mesh.Object, pass Pass) error
}

// Frame is everything needed to render one frame.
type Frame struct {
	Camera     *camera.Camera
	Light      *shadow.LightRig
	Lights     *lighting.Registry
	LightIndex int
	Splits     shadow.Splits
	Objects    []*mesh.Object
	// Overlay objects are drawn as lines after the cascades.
	Overlay []*mesh.Object
}

// Options control the cascade passes.
type Options struct {
	ShadowsEnabled      bool
	TightenBounds       bool
	TintCascades        bool
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32
}

// DefaultOptions returns the default pass options.
func DefaultOptions() Options {
	return Options{
		ShadowsEnabled:      true,
		PolygonOffsetFactor: 2,
		PolygonOffsetUnits:  4,
	}
}

// Cascade describes the last rendered state of one cascade.
type Cascade struct {
	Index      int
	Near, Far  float32
	DepthStart float64
	DepthEnd   float64
	Corners    shadow.Corners
	Crop       math.Mat4
}

// ErrNoCamera is returned when a frame has no main camera or light.
var ErrNoCamera = errors.New("scene: frame needs a camera and a light")

// Renderer runs the two-pass cascade loop on a Device.
type Renderer struct {
	dev      Device
	Options  Options
	cascades []Cascade

	captureIndex int
	capture      func(cascade int)
}

// NewRenderer creates a renderer for dev.
func NewRenderer(dev Device, opts Options) *Renderer {
	return &Renderer{
		dev:          dev,
		Options:      opts,
		captureIndex: -1,
	}
}

// Cascades returns the cascades of the last frame.
func (r *Renderer) Cascades() []Cascade {
	return r.cascades
}

// CaptureDepth registers fn to run once, right after the depth pass of the
// given cascade in the next frame, while the shadow target still holds it.
func (r *Renderer) CaptureDepth(cascade int, fn func(cascade int)) {
	r.captureIndex = cascade
	r.capture = fn
}

// RenderFrame renders all cascades near to far, then the overlay.
// The camera clip planes and the device depth range are restored on every
// return path.
func (r *Renderer) RenderFrame(f Frame) error {
	if f.Camera == nil || f.Light == nil {
		return ErrNoCamera
	}

	r.dev.BindDefaultTarget()
	r.dev.Clear()

	if !r.Options.ShadowsEnabled {
		if err := r.renderUnshadowed(f); err != nil {
			return err
		}
		return r.renderOverlay(f)
	}

	if f.Splits.Count() == 0 {
		return fmt.Errorf("scene: %w", shadow.ErrInvalidCount)
	}

	lightViewProj := f.Light.ViewProjection()
	r.cascades = r.cascades[:0]
	for i := 0; i < f.Splits.Count(); i++ {
		if err := r.renderCascade(f, i, lightViewProj); err != nil {
			return fmt.Errorf("cascade %d: %w", i, err)
		}
	}
	return r.renderOverlay(f)
}

func (r *Renderer) renderCascade(f Frame, i int, lightViewProj math.Mat4) error {
	near, far := f.Splits.Range(i)
	corners := shadow.CascadeCorners(f.Camera, f.Splits, i)
	bounds := corners
	if r.Options.TightenBounds {
		bounds = corners.Bounds().Corners()
	}
	crop := shadow.CropMatrix(bounds, lightViewProj)

	if err := r.depthPass(f, crop, lightViewProj); err != nil {
		return err
	}
	if r.capture != nil && r.captureIndex == i {
		r.capture(i)
		r.capture = nil
		r.captureIndex = -1
	}

	start, end := f.Splits.DepthRange(i)
	r.dev.SetDepthRange(start, end)
	defer r.dev.SetDepthRange(0, 1)

	restore, err := f.Camera.OverrideClip(near, far)
	if err != nil {
		return err
	}
	defer restore()

	r.cascades = append(r.cascades, Cascade{
		Index:      i,
		Near:       near,
		Far:        far,
		DepthStart: start,
		DepthEnd:   end,
		Corners:    corners,
		Crop:       crop,
	})

	r.dev.BindShadowTexture()
	r.dev.UseLitProgram(r.litParams(f, crop, lightViewProj, i, true))
	for _, obj := range f.Objects {
		if err := r.dev.Draw(obj, LitPass); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) depthPass(f Frame, crop, lightViewProj math.Mat4) error {
	r.dev.BindShadowTarget()
	r.dev.SetColorWrites(false)
	r.dev.SetPolygonOffset(true, r.Options.PolygonOffsetFactor, r.Options.PolygonOffsetUnits)
	defer func() {
		r.dev.SetPolygonOffset(false, 0, 0)
		r.dev.SetColorWrites(true)
		r.dev.BindDefaultTarget()
	}()

	r.dev.UseDepthProgram(crop, lightViewProj)
	for _, obj := range f.Objects {
		if !obj.CastsShadow {
			continue
		}
		if err := r.dev.Draw(obj, DepthPass); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderUnshadowed(f Frame) error {
	r.cascades = r.cascades[:0]
	r.dev.UseLitProgram(r.litParams(f, math.Identity(), f.Light.ViewProjection(), 0, false))
	for _, obj := range f.Objects {
		if err := r.dev.Draw(obj, LitPass); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderOverlay(f Frame) error {
	if len(f.Overlay) == 0 {
		return nil
	}
	r.dev.UseLineProgram(f.Camera.ViewProjection())
	for _, obj := range f.Overlay {
		if err := r.dev.Draw(obj, LinePass); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) litParams(f Frame, crop, lightViewProj math.Mat4, cascade int, shadowed bool) LitParams {
	return LitParams{
		View:           f.Camera.ViewMatrix(),
		Projection:     f.Camera.ProjectionMatrix(),
		CameraPosition: f.Camera.Position,
		LightCrop:      crop,
		LightViewProj:  lightViewProj,
		LightIndex:     f.LightIndex,
		Lights:         f.Lights,
		Shadowed:       shadowed,
		Cascade:        cascade,
		Tint:           r.Options.TintCascades,
	}
}
