package camera

import (
	gomath "math"

	"github.com/Faultbox/cascadeview/pkg/math"
)

// Orbit drives a Camera around a center point from mouse and keyboard input.
type Orbit struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSpeed        float32 // fraction of Distance per unit of movement
}

// NewOrbit creates an orbit controller matching the camera's current placement.
func NewOrbit(c *Camera) *Orbit {
	o := &Orbit{
		Center:          c.Reference,
		MinDistance:     1.0,
		MaxDistance:     2000.0,
		MinPitch:        -1.45,
		MaxPitch:        1.45,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSpeed:        0.01,
	}

	offset := c.Position.Sub(c.Reference)
	o.Distance = offset.Length()
	if o.Distance > 0 {
		o.Pitch = float32(gomath.Asin(float64(offset.Y / o.Distance)))
		o.Yaw = float32(gomath.Atan2(float64(offset.X), float64(offset.Z)))
	}
	o.clamp()
	return o
}

// Position returns the orbiting eye position in world space.
func (o *Orbit) Position() math.Vec3 {
	x := o.Distance * float32(gomath.Cos(float64(o.Pitch))*gomath.Sin(float64(o.Yaw)))
	y := o.Distance * float32(gomath.Sin(float64(o.Pitch)))
	z := o.Distance * float32(gomath.Cos(float64(o.Pitch))*gomath.Cos(float64(o.Yaw)))
	return o.Center.Add(math.Vec3{X: x, Y: y, Z: z})
}

// Apply writes the orbit placement into c.
func (o *Orbit) Apply(c *Camera) {
	c.Position = o.Position()
	c.Reference = o.Center
	c.Up = math.Vec3{X: 0, Y: 1, Z: 0}
}

// HandleDrag updates rotation based on mouse drag delta.
func (o *Orbit) HandleDrag(deltaX, deltaY float32) {
	o.Yaw -= deltaX * o.DragSensitivity
	o.Pitch += deltaY * o.DragSensitivity
	o.clamp()
}

// HandleZoom updates distance based on scroll wheel delta.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.clamp()
}

// HandleMovement pans the center point on the ground plane.
func (o *Orbit) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := o.Distance * o.PanSpeed

	dirX := float32(gomath.Sin(float64(o.Yaw)))
	dirZ := float32(gomath.Cos(float64(o.Yaw)))
	rightX := float32(gomath.Cos(float64(o.Yaw)))
	rightZ := float32(-gomath.Sin(float64(o.Yaw)))

	// Negate forward so W moves "into" the scene
	o.Center.X += (-dirX*forward + rightX*right) * speed
	o.Center.Z += (-dirZ*forward + rightZ*right) * speed
	o.Center.Y += up * speed
}

func (o *Orbit) clamp() {
	o.Pitch = math.Clamp(o.Pitch, o.MinPitch, o.MaxPitch)
	o.Distance = math.Clamp(o.Distance, o.MinDistance, o.MaxDistance)
}
