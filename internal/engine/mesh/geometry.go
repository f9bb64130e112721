// Package mesh provides primitive geometry and drawable GPU objects.
package mesh

import (
	"github.com/Faultbox/cascadeview/pkg/math"
)

// Vertex is the interleaved vertex layout shared by all scene shaders:
// location 0 position, 1 normal, 2 texcoord.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       [2]float32
}

// vertexSize is the byte stride of Vertex.
const vertexSize = 8 * 4

// Geometry is an indexed triangle list in object space.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the object-space bounding box of the vertices.
func (g Geometry) Bounds() (lo, hi math.Vec3) {
	for i, v := range g.Vertices {
		if i == 0 {
			lo, hi = v.Position, v.Position
			continue
		}
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}

// Plane returns a square on Y=0 facing +Y, centered on the origin.
// Texture coordinates repeat `repeat` times across the plane.
func Plane(size, repeat float32) Geometry {
	h := size / 2
	up := math.Vec3{Y: 1}
	return Geometry{
		Vertices: []Vertex{
			{Position: math.Vec3{X: -h, Z: -h}, Normal: up, UV: [2]float32{0, 0}},
			{Position: math.Vec3{X: -h, Z: h}, Normal: up, UV: [2]float32{0, repeat}},
			{Position: math.Vec3{X: h, Z: h}, Normal: up, UV: [2]float32{repeat, repeat}},
			{Position: math.Vec3{X: h, Z: -h}, Normal: up, UV: [2]float32{repeat, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// cubeFaces lists each face normal with two tangents where u x v = normal,
// so the generated quads wind counter-clockwise seen from outside.
var cubeFaces = [6][3]math.Vec3{
	{{X: 1}, {Y: 1}, {Z: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {Z: 1}, {X: 1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}, {X: 1}},
}

// Cube returns a unit cube centered on the origin with per-face normals.
func Cube() Geometry {
	g := Geometry{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	quad := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		base := uint32(len(g.Vertices))
		for _, q := range quad {
			p := n.Scale(0.5).Add(u.Scale(q[0] * 0.5)).Add(v.Scale(q[1] * 0.5))
			g.Vertices = append(g.Vertices, Vertex{
				Position: p,
				Normal:   n,
				UV:       [2]float32{(q[0] + 1) / 2, (q[1] + 1) / 2},
			})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Flatten returns the vertices as a float slice in GPU layout.
func (g Geometry) Flatten() []float32 {
	out := make([]float32, 0, len(g.Vertices)*8)
	for _, v := range g.Vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
			v.UV[0], v.UV[1],
		)
	}
	return out
}
