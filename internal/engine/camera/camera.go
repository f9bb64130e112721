// Package camera provides the view/projection camera model used by the
// main view and by the shadow-casting light.
package camera

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/cascadeview/pkg/math"
)

// ErrInvalidClip is returned when near/far planes violate 0 < near < far.
var ErrInvalidClip = errors.New("camera: invalid clip planes")

// ErrInvalidLens is returned for a non-positive aspect or an out-of-range field of view.
var ErrInvalidLens = errors.New("camera: invalid lens parameters")

// Projection selects the projection kind.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// String returns the projection name.
func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// Orientation is the subset of camera state that determines the shape and
// placement of its view frustum.
type Orientation struct {
	Position math.Vec3
	Forward  math.Vec3 // unit view direction
	Up       math.Vec3 // unit, orthogonal to Forward
	Right    math.Vec3 // unit, Forward x Up
	FOV      float32   // vertical, radians
	Aspect   float32
}

// Camera holds view and projection state.
//
// Position, Reference and Up may be changed freely; the view matrix is
// derived from them on demand. Lens and clip parameters go through setters
// so the projection matrix never goes stale.
type Camera struct {
	Position  math.Vec3
	Reference math.Vec3 // look-at point
	Up        math.Vec3

	// Moving is set while the user is interactively dragging the camera.
	Moving bool

	projection Projection
	fov        float32 // vertical field of view, radians
	orthoSize  float32 // half-height of the orthographic volume
	near       float32
	far        float32
	aspect     float32

	proj math.Mat4
}

// Config describes a camera at construction time.
type Config struct {
	Projection Projection
	Position   math.Vec3
	Reference  math.Vec3
	Up         math.Vec3
	FOV        float32 // radians, perspective only
	OrthoSize  float32 // half-height, orthographic only
	Near       float32
	Far        float32
	Aspect     float32
}

// New creates a camera, validating lens and clip parameters.
func New(cfg Config) (*Camera, error) {
	if err := validateClip(cfg.Near, cfg.Far); err != nil {
		return nil, err
	}
	if err := validateLens(cfg.Projection, cfg.FOV, cfg.OrthoSize, cfg.Aspect); err != nil {
		return nil, err
	}
	up := cfg.Up
	if up == (math.Vec3{}) {
		up = math.Vec3{X: 0, Y: 1, Z: 0}
	}

	c := &Camera{
		Position:   cfg.Position,
		Reference:  cfg.Reference,
		Up:         up,
		projection: cfg.Projection,
		fov:        cfg.FOV,
		orthoSize:  cfg.OrthoSize,
		near:       cfg.Near,
		far:        cfg.Far,
		aspect:     cfg.Aspect,
	}
	c.updateProjection()
	return c, nil
}

// Near returns the near plane distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far plane distance.
func (c *Camera) Far() float32 { return c.far }

// FOV returns the vertical field of view in radians.
func (c *Camera) FOV() float32 { return c.fov }

// Aspect returns the width/height ratio.
func (c *Camera) Aspect() float32 { return c.aspect }

// ProjectionKind returns the projection kind.
func (c *Camera) ProjectionKind() Projection { return c.projection }

// SetClip changes the near/far planes and recomputes the projection.
func (c *Camera) SetClip(near, far float32) error {
	if err := validateClip(near, far); err != nil {
		return err
	}
	c.near, c.far = near, far
	c.updateProjection()
	return nil
}

// SetFOV changes the vertical field of view (radians).
func (c *Camera) SetFOV(fov float32) error {
	if err := validateLens(c.projection, fov, c.orthoSize, c.aspect); err != nil {
		return err
	}
	c.fov = fov
	c.updateProjection()
	return nil
}

// SetAspect changes the aspect ratio, typically on window resize.
func (c *Camera) SetAspect(aspect float32) error {
	if err := validateLens(c.projection, c.fov, c.orthoSize, aspect); err != nil {
		return err
	}
	c.aspect = aspect
	c.updateProjection()
	return nil
}

// SetOrthoSize changes the orthographic half-height.
func (c *Camera) SetOrthoSize(size float32) error {
	if err := validateLens(c.projection, c.fov, size, c.aspect); err != nil {
		return err
	}
	c.orthoSize = size
	c.updateProjection()
	return nil
}

// OverrideClip temporarily replaces near/far and returns a function that
// restores the previous values exactly. Callers should defer the restore
// immediately so it runs on every exit path.
func (c *Camera) OverrideClip(near, far float32) (restore func(), err error) {
	prevNear, prevFar, prevProj := c.near, c.far, c.proj
	if err := c.SetClip(near, far); err != nil {
		return func() {}, err
	}
	return func() {
		c.near, c.far, c.proj = prevNear, prevFar, prevProj
	}, nil
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Reference, c.Up)
}

// ProjectionMatrix returns the current projection.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return c.proj
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.proj.Mul(c.ViewMatrix())
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math.Vec3 {
	return c.Reference.Sub(c.Position).Normalize()
}

// Orientation returns the orthonormal camera basis and lens.
func (c *Camera) Orientation() Orientation {
	f := c.Forward()
	r := f.Cross(c.Up).Normalize()
	u := r.Cross(f)
	return Orientation{
		Position: c.Position,
		Forward:  f,
		Up:       u,
		Right:    r,
		FOV:      c.fov,
		Aspect:   c.aspect,
	}
}

// Roll rotates the up vector around the view axis by angle radians.
func (c *Camera) Roll(angle float32) {
	q := math.QuatFromAxisAngle(c.Forward(), angle).Normalize()
	c.Up = q.Rotate(c.Orientation().Up).Normalize()
}

func (c *Camera) updateProjection() {
	switch c.projection {
	case Orthographic:
		h := c.orthoSize
		w := h * c.aspect
		c.proj = math.Ortho(-w, w, -h, h, c.near, c.far)
	default:
		c.proj = math.Perspective(c.fov, c.aspect, c.near, c.far)
	}
}

func validateClip(near, far float32) error {
	if !(near > 0) || !(far > near) || gomath.IsInf(float64(far), 0) {
		return fmt.Errorf("%w: near=%g far=%g", ErrInvalidClip, near, far)
	}
	return nil
}

func validateLens(p Projection, fov, orthoSize, aspect float32) error {
	if !(aspect > 0) || gomath.IsInf(float64(aspect), 0) {
		return fmt.Errorf("%w: aspect=%g", ErrInvalidLens, aspect)
	}
	switch p {
	case Orthographic:
		if !(orthoSize > 0) {
			return fmt.Errorf("%w: ortho size=%g", ErrInvalidLens, orthoSize)
		}
	default:
		if !(fov > 0) || fov >= gomath.Pi {
			return fmt.Errorf("%w: fov=%g", ErrInvalidLens, fov)
		}
	}
	return nil
}
