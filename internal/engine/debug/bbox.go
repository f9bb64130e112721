// Package debug provides debug visualization and capture utilities.
package debug

import (
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// WireframeVertexCount is the number of vertices for one box or frustum
// wireframe (12 edges × 2).
const WireframeVertexCount = 24

// boxEdges lists the corner index pairs of a hexahedron whose corners follow
// the shadow.Corners ordering: near quad BL, TL, TR, BR then the far quad.
var boxEdges = [12][2]int{
	// Near quad
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// Far quad
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// Connecting edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// FrustumLines creates line vertices for the edges of a frustum slice.
// Returns WireframeVertexCount vertices, format: [x, y, z] per vertex.
func FrustumLines(c shadow.Corners) []float32 {
	return AppendFrustumLines(make([]float32, 0, WireframeVertexCount*3), c)
}

// AppendFrustumLines appends the frustum edges of c to dst.
func AppendFrustumLines(dst []float32, c shadow.Corners) []float32 {
	for _, e := range boxEdges {
		a, b := c[e[0]], c[e[1]]
		dst = append(dst, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return dst
}

// BoxLines creates wireframe vertices for an axis-aligned box, expanded by
// padding on all sides.
func BoxLines(b shadow.AABB, padding float32) []float32 {
	return AppendBoxLines(make([]float32, 0, WireframeVertexCount*3), b, padding)
}

// AppendBoxLines appends the wireframe of b to dst.
func AppendBoxLines(dst []float32, b shadow.AABB, padding float32) []float32 {
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	b.Min = b.Min.Sub(pad)
	b.Max = b.Max.Add(pad)
	return AppendFrustumLines(dst, b.Corners())
}
