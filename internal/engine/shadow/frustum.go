package shadow

import (
	gomath "math"

	"github.com/Faultbox/cascadeview/internal/engine/camera"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// Corner indices. The near quad comes first, then the far quad, each wound
// bottom-left, top-left, top-right, bottom-right as seen from the camera.
const (
	NearBottomLeft = iota
	NearTopLeft
	NearTopRight
	NearBottomRight
	FarBottomLeft
	FarTopLeft
	FarTopRight
	FarBottomRight
)

// Corners holds the eight corners of a frustum slice or box.
type Corners [8]math.Vec3

// FrustumCorners returns the world-space corners of the slice [near, far] of
// the frustum described by o, built by offsetting each plane center along the
// camera right/up basis.
func FrustumCorners(o camera.Orientation, near, far float32) Corners {
	var c Corners
	tanHalf := float32(gomath.Tan(float64(o.FOV) / 2))

	for plane, d := range [2]float32{near, far} {
		hh := tanHalf * d
		hw := hh * o.Aspect
		center := o.Position.Add(o.Forward.Scale(d))
		right := o.Right.Scale(hw)
		up := o.Up.Scale(hh)

		base := plane * 4
		c[base+0] = center.Sub(right).Sub(up)
		c[base+1] = center.Sub(right).Add(up)
		c[base+2] = center.Add(right).Add(up)
		c[base+3] = center.Add(right).Sub(up)
	}
	return c
}

// FrustumCornersFromInverse builds the same corners in view space,
// (±hw, ±hh, -d), and moves them to world space with invView.
func FrustumCornersFromInverse(invView math.Mat4, fov, aspect, near, far float32) Corners {
	var c Corners
	tanHalf := float32(gomath.Tan(float64(fov) / 2))

	for plane, d := range [2]float32{near, far} {
		hh := tanHalf * d
		hw := hh * aspect

		base := plane * 4
		c[base+0] = invView.TransformPoint(math.Vec3{X: -hw, Y: -hh, Z: -d})
		c[base+1] = invView.TransformPoint(math.Vec3{X: -hw, Y: hh, Z: -d})
		c[base+2] = invView.TransformPoint(math.Vec3{X: hw, Y: hh, Z: -d})
		c[base+3] = invView.TransformPoint(math.Vec3{X: hw, Y: -hh, Z: -d})
	}
	return c
}

// CascadeCorners returns the world-space corners of cascade i of cam.
func CascadeCorners(cam *camera.Camera, splits Splits, i int) Corners {
	near, far := splits.Range(i)
	return FrustumCorners(cam.Orientation(), near, far)
}
