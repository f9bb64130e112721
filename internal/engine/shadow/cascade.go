package shadow

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/cascadeview/pkg/math"
)

// DefaultLambda weights the logarithmic split scheme against the uniform one.
// 0 is purely uniform, 1 purely logarithmic.
const DefaultLambda = 0.5

// MaxCascades bounds the number of cascades a split set may hold.
const MaxCascades = 8

var (
	// ErrInvalidRange is returned when near/far do not satisfy 0 < near < far
	// or are too close together to be split.
	ErrInvalidRange = errors.New("shadow: invalid depth range")

	// ErrInvalidCount is returned for a cascade count outside [1, MaxCascades].
	ErrInvalidCount = errors.New("shadow: invalid cascade count")
)

// Splits is an ordered set of N+1 view-space depths partitioning [near, far]
// into N cascades. Splits[0] is near and Splits[N] is far.
type Splits []float32

// NewSplits partitions [near, far] into n cascades using DefaultLambda.
func NewSplits(near, far float32, n int) (Splits, error) {
	return NewSplitsLambda(near, far, n, DefaultLambda)
}

// NewSplitsLambda partitions [near, far] into n cascades, blending uniform and
// logarithmic distributions with weight lambda (clamped to [0, 1]).
func NewSplitsLambda(near, far float32, n int, lambda float32) (Splits, error) {
	if n < 1 || n > MaxCascades {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if !(near > 0) || !(far > near) || gomath.IsInf(float64(far), 0) {
		return nil, fmt.Errorf("%w: near=%g far=%g", ErrInvalidRange, near, far)
	}
	if gomath.IsNaN(float64(lambda)) {
		lambda = DefaultLambda
	}
	lambda = math.Clamp(lambda, 0, 1)

	nf, ff := float64(near), float64(far)
	splits := make(Splits, n+1)
	splits[0] = near
	for i := 1; i < n; i++ {
		p := float64(i) / float64(n)
		uniform := nf + (ff-nf)*p
		logarithmic := nf * gomath.Pow(ff/nf, p)
		splits[i] = float32(math.Lerp(uniform, logarithmic, float64(lambda)))
	}
	splits[n] = far

	for i := 1; i <= n; i++ {
		if !(splits[i] > splits[i-1]) {
			return nil, fmt.Errorf("%w: range [%g, %g] too narrow for %d cascades", ErrInvalidRange, near, far, n)
		}
	}
	return splits, nil
}

// Count returns the number of cascades.
func (s Splits) Count() int {
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

// Near returns the first split (the camera near plane).
func (s Splits) Near() float32 { return s[0] }

// Far returns the last split (the camera far plane).
func (s Splits) Far() float32 { return s[len(s)-1] }

// Range returns the view-space [near, far] of cascade i.
func (s Splits) Range(i int) (near, far float32) {
	return s[i], s[i+1]
}

// DepthRange returns the device depth-range slice for cascade i, the
// cascade's share of [0, 1] measured linearly along [near, far].
// Adjacent cascades share their boundary value exactly.
func (s Splits) DepthRange(i int) (start, end float64) {
	return s.normalize(i), s.normalize(i + 1)
}

func (s Splits) normalize(i int) float64 {
	n, f := float64(s.Near()), float64(s.Far())
	return (float64(s[i]) - n) / (f - n)
}
