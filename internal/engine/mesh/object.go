package mesh

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/cascadeview/pkg/math"
)

// Draw modes.
const (
	Triangles = gl.TRIANGLES
	Lines     = gl.LINES
)

// Object is a drawable instance: vertex array, draw mode, vertex count and
// material parameters.
type Object struct {
	Name  string
	VAO   uint32
	Mode  uint32
	Count int32
	// Indexed objects draw with DrawElements.
	Indexed bool

	Diffuse     [4]float32
	Model       math.Mat4
	CastsShadow bool
	Textured    bool
	Texture     uint32

	// Object-space bounds.
	LocalMin math.Vec3
	LocalMax math.Vec3

	vbo      uint32
	ebo      uint32
	capacity int
	owner    bool
}

// Instance returns a copy sharing the GPU buffers with its own transform and
// material. Destroying an instance is a no-op.
func (o *Object) Instance(name string, model math.Mat4, diffuse [4]float32) *Object {
	inst := *o
	inst.Name = name
	inst.Model = model
	inst.Diffuse = diffuse
	inst.owner = false
	return &inst
}

// WorldBounds returns the world-space bounding box of the object.
func (o *Object) WorldBounds() (lo, hi math.Vec3) {
	for i := 0; i < 8; i++ {
		c := o.LocalMin
		if i&1 != 0 {
			c.X = o.LocalMax.X
		}
		if i&2 != 0 {
			c.Y = o.LocalMax.Y
		}
		if i&4 != 0 {
			c.Z = o.LocalMax.Z
		}
		p := o.Model.TransformPoint(c)
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// Upload creates GPU buffers for the geometry.
func Upload(name string, g Geometry) (*Object, error) {
	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return nil, fmt.Errorf("mesh %s: empty geometry", name)
	}
	vertices := g.Flatten()
	lo, hi := g.Bounds()

	o := &Object{
		Name:        name,
		Mode:        Triangles,
		Count:       int32(len(g.Indices)),
		Indexed:     true,
		Diffuse:     [4]float32{1, 1, 1, 1},
		Model:       math.Identity(),
		CastsShadow: true,
		LocalMin:    lo,
		LocalMax:    hi,
		owner:       true,
	}

	gl.GenVertexArrays(1, &o.VAO)
	gl.BindVertexArray(o.VAO)

	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexSize, 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexSize, 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexSize, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &o.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return o, nil
}

// NewLineBuffer creates a dynamic position-only line list with room for
// capacity vertices.
func NewLineBuffer(name string, capacity int) (*Object, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("mesh %s: invalid line capacity %d", name, capacity)
	}
	o := &Object{
		Name:     name,
		Mode:     Lines,
		Diffuse:  [4]float32{1, 1, 1, 1},
		Model:    math.Identity(),
		capacity: capacity,
		owner:    true,
	}

	gl.GenVertexArrays(1, &o.VAO)
	gl.BindVertexArray(o.VAO)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*3*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	return o, nil
}

// SetLines replaces the contents of a line buffer. Extra vertices beyond the
// buffer capacity are dropped.
func (o *Object) SetLines(vertices []float32) {
	n := min(len(vertices)/3, o.capacity)
	o.Count = int32(n)
	if n == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*3*4, unsafe.Pointer(&vertices[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw issues the draw call for the object.
func (o *Object) Draw() {
	if o.Count == 0 {
		return
	}
	gl.BindVertexArray(o.VAO)
	if o.Indexed {
		gl.DrawElements(o.Mode, o.Count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(o.Mode, 0, o.Count)
	}
	gl.BindVertexArray(0)
}

// Destroy releases the GPU buffers owned by the object.
func (o *Object) Destroy() {
	if !o.owner {
		return
	}
	if o.VAO != 0 {
		gl.DeleteVertexArrays(1, &o.VAO)
		o.VAO = 0
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
		o.vbo = 0
	}
	if o.ebo != 0 {
		gl.DeleteBuffers(1, &o.ebo)
		o.ebo = 0
	}
}
