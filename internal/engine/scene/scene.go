// Package scene renders the demo scene with cascaded shadow maps.
// It builds the object layout, drives the per-cascade depth and lit passes
// and implements the GPU side of those passes on OpenGL.
package scene

import (
	"fmt"
	"image/color"

	"github.com/Faultbox/cascadeview/internal/engine/mesh"
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/internal/engine/texture"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// Kind identifies the primitive a placement is drawn with.
type Kind int

const (
	KindGround Kind = iota
	KindCube
	KindPillar
)

// Config contains scene layout options.
type Config struct {
	GroundSize    float32
	GroundRepeat  float32
	GroundTexture string // PNG, BMP or TGA; a checkerboard is generated when empty
	GridSize      int
	Spacing       float32
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		GroundSize:   800,
		GroundRepeat: 40,
		GridSize:     9,
		Spacing:      40,
	}
}

// Placement is one object of the layout, independent of any GPU state.
type Placement struct {
	Name        string
	Kind        Kind
	Model       math.Mat4
	Diffuse     [4]float32
	CastsShadow bool
	Textured    bool
}

var palette = [][4]float32{
	{0.85, 0.35, 0.30, 1},
	{0.30, 0.65, 0.85, 1},
	{0.90, 0.75, 0.30, 1},
	{0.45, 0.80, 0.45, 1},
	{0.70, 0.50, 0.85, 1},
}

// Layout returns the ground plane followed by a grid of cubes and pillars
// centered on the origin. Every third grid cell holds a pillar.
func Layout(cfg Config) []Placement {
	out := make([]Placement, 0, 1+cfg.GridSize*cfg.GridSize)
	out = append(out, Placement{
		Name:     "ground",
		Kind:     KindGround,
		Model:    math.Identity(),
		Diffuse:  [4]float32{1, 1, 1, 1},
		Textured: true,
	})

	offset := float32(cfg.GridSize-1) * cfg.Spacing / 2
	for i := 0; i < cfg.GridSize; i++ {
		for j := 0; j < cfg.GridSize; j++ {
			n := i*cfg.GridSize + j
			x := float32(i)*cfg.Spacing - offset
			z := float32(j)*cfg.Spacing - offset

			p := Placement{
				Diffuse:     palette[n%len(palette)],
				CastsShadow: true,
			}
			var w, h float32
			if n%3 == 2 {
				p.Kind = KindPillar
				p.Name = fmt.Sprintf("pillar_%d_%d", i, j)
				w, h = 3, float32(12+(n*7)%19)
			} else {
				p.Kind = KindCube
				p.Name = fmt.Sprintf("cube_%d_%d", i, j)
				w = float32(4 + (i*7+j*3)%5)
				h = w
			}
			yaw := float32(n%8) * 0.2
			p.Model = math.Translate(x, h/2, z).Mul(math.RotateY(yaw)).Mul(math.Scale(w, h, w))
			out = append(out, p)
		}
	}
	return out
}

// Scene holds the uploaded objects and their combined bounds.
type Scene struct {
	Objects []*mesh.Object
	Bounds  shadow.AABB

	meshes   []*mesh.Object
	textures []uint32
}

// New uploads the primitive meshes and instantiates the layout.
// Must be called with a current OpenGL context.
func New(cfg Config) (*Scene, error) {
	s := &Scene{}

	plane, err := mesh.Upload("ground", mesh.Plane(cfg.GroundSize, cfg.GroundRepeat))
	if err != nil {
		return nil, err
	}
	s.meshes = append(s.meshes, plane)

	cube, err := mesh.Upload("cube", mesh.Cube())
	if err != nil {
		s.Destroy()
		return nil, err
	}
	s.meshes = append(s.meshes, cube)

	groundTex, err := s.groundTexture(cfg.GroundTexture)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	for _, p := range Layout(cfg) {
		src := cube
		if p.Kind == KindGround {
			src = plane
		}
		obj := src.Instance(p.Name, p.Model, p.Diffuse)
		obj.CastsShadow = p.CastsShadow
		obj.Textured = p.Textured
		if p.Textured {
			obj.Texture = groundTex
		}
		s.Objects = append(s.Objects, obj)
	}

	s.Bounds = ObjectBounds(s.Objects)
	return s, nil
}

func (s *Scene) groundTexture(path string) (uint32, error) {
	var tex uint32
	if path == "" {
		img := texture.Checker(256, 8,
			color.RGBA{R: 190, G: 190, B: 180, A: 255},
			color.RGBA{R: 120, G: 125, B: 120, A: 255})
		tex = texture.Upload(img)
	} else {
		img, err := texture.Load(path)
		if err != nil {
			return 0, fmt.Errorf("ground texture: %w", err)
		}
		tex = texture.Upload(img)
	}
	s.textures = append(s.textures, tex)
	return tex, nil
}

// ObjectBounds returns the world-space box enclosing all objects.
func ObjectBounds(objects []*mesh.Object) shadow.AABB {
	points := make([]math.Vec3, 0, len(objects)*2)
	for _, o := range objects {
		lo, hi := o.WorldBounds()
		points = append(points, lo, hi)
	}
	return shadow.BoundsOf(points...)
}

// Destroy releases all GPU resources.
func (s *Scene) Destroy() {
	for _, m := range s.meshes {
		m.Destroy()
	}
	for _, tex := range s.textures {
		texture.Delete(tex)
	}
	s.meshes = nil
	s.textures = nil
	s.Objects = nil
}
