package shadow

import (
	gomath "math"

	"github.com/Faultbox/cascadeview/pkg/math"
)

// MinCropSpan is the smallest light-clip-space extent a crop axis may have.
// Narrower volumes are widened around their midpoint so the scale stays finite.
const MinCropSpan = 1e-4

// minW is the smallest |w| accepted when projecting points into light clip space.
const minW = 1e-6

// CropBounds projects points by lightViewProj, divides by w and reduces them
// to min/max per axis. Min Z is always forced to -1 so casters between the
// light and the cascade are never clipped by the near plane. ok is false if
// no point could be projected.
func CropBounds(points Corners, lightViewProj math.Mat4) (lo, hi math.Vec3, ok bool) {
	inf := float32(gomath.Inf(1))
	lo = math.Vec3{X: inf, Y: inf, Z: inf}
	hi = lo.Neg()

	for _, p := range points {
		clip := lightViewProj.MulVec4(p.Vec4(1))
		w := clip[3]
		if gomath.Abs(float64(w)) < minW {
			continue
		}
		ndc := clip.XYZ().Scale(1 / w)
		if !ndc.IsFinite() {
			continue
		}
		lo = lo.Min(ndc)
		hi = hi.Max(ndc)
		ok = true
	}
	if !ok {
		return math.Vec3{}, math.Vec3{}, false
	}

	lo.Z = -1
	return lo, hi, true
}

// CropMatrix builds the scale+offset transform C such that
// C * lightViewProj maps points into [-1, 1] on X and Y, and into [-1, 1] on Z
// from the clamped minimum. Degenerate spans are widened to MinCropSpan; the
// result is always finite and invertible.
func CropMatrix(points Corners, lightViewProj math.Mat4) math.Mat4 {
	lo, hi, ok := CropBounds(points, lightViewProj)
	if !ok {
		return math.Identity()
	}

	sx, ox := axisCrop(lo.X, hi.X, (lo.X+hi.X)/2)
	sy, oy := axisCrop(lo.Y, hi.Y, (lo.Y+hi.Y)/2)
	// Z grows away from the clamped minimum rather than around a midpoint.
	sz, oz := axisCrop(lo.Z, hi.Z, lo.Z+max(hi.Z-lo.Z, MinCropSpan)/2)

	return math.Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		ox, oy, oz, 1,
	}
}

// axisCrop returns the scale and offset mapping [lo, hi] onto [-1, 1], with
// the span floored at MinCropSpan and mid as the center of the mapped range.
// On Z the clamp can leave hi below lo when every point lies past the near
// plane; the span is then MinCropSpan starting at lo, so such casters fall
// outside the volume and are clipped.
func axisCrop(lo, hi, mid float32) (scale, offset float32) {
	span := max(hi-lo, MinCropSpan)
	scale = 2 / span
	return scale, -mid * scale
}
