// Package lighting holds the scene lights and flattens them for GPU upload.
package lighting

import (
	"errors"

	"github.com/Faultbox/cascadeview/pkg/math"
)

// MaxLights is the maximum number of lights supported in shaders.
const MaxLights = 8

// ErrFull is returned when adding a light to a full registry.
var ErrFull = errors.New("lighting: registry full")

// Light is a directional or positional light source.
type Light struct {
	// Position is a direction towards the light when W is 0 and a world
	// position when W is 1.
	Position math.Vec4
	Ambient  [3]float32
	Diffuse  [3]float32
	Specular [3]float32
	Enabled  bool
}

// Directional reports whether the light has no position.
func (l Light) Directional() bool {
	return l.Position[3] == 0
}

// Registry holds lights by index.
type Registry struct {
	lights []Light
}

// NewRegistry creates an empty light registry.
func NewRegistry() *Registry {
	return &Registry{
		lights: make([]Light, 0, MaxLights),
	}
}

// Add appends a light and returns its index.
func (r *Registry) Add(light Light) (int, error) {
	if len(r.lights) >= MaxLights {
		return -1, ErrFull
	}
	// Clamp color values to 0-1 range
	light.Ambient = clampColor(light.Ambient)
	light.Diffuse = clampColor(light.Diffuse)
	light.Specular = clampColor(light.Specular)

	r.lights = append(r.lights, light)
	return len(r.lights) - 1, nil
}

// Len returns the number of registered lights.
func (r *Registry) Len() int {
	return len(r.lights)
}

// Get returns the light at index i.
func (r *Registry) Get(i int) (Light, bool) {
	if i < 0 || i >= len(r.lights) {
		return Light{}, false
	}
	return r.lights[i], true
}

// SetPosition updates the position (or direction) of light i.
func (r *Registry) SetPosition(i int, pos math.Vec4) bool {
	if i < 0 || i >= len(r.lights) {
		return false
	}
	r.lights[i].Position = pos
	return true
}

// Toggle flips light i on or off and returns its new state.
func (r *Registry) Toggle(i int) bool {
	if i < 0 || i >= len(r.lights) {
		return false
	}
	r.lights[i].Enabled = !r.lights[i].Enabled
	return r.lights[i].Enabled
}

// Enabled reports whether light i exists and is on.
func (r *Registry) Enabled(i int) bool {
	l, ok := r.Get(i)
	return ok && l.Enabled
}

// Positions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, w0, x1, ...], padded to MaxLights.
func (r *Registry) Positions() []float32 {
	result := make([]float32, MaxLights*4)
	for i, light := range r.lights {
		copy(result[i*4:i*4+4], light.Position[:])
	}
	return result
}

// Ambients returns ambient colors as a flat float32 slice for GPU upload.
func (r *Registry) Ambients() []float32 {
	return r.colors(func(l Light) [3]float32 { return l.Ambient })
}

// Diffuses returns diffuse colors as a flat float32 slice for GPU upload.
func (r *Registry) Diffuses() []float32 {
	return r.colors(func(l Light) [3]float32 { return l.Diffuse })
}

// Speculars returns specular colors as a flat float32 slice for GPU upload.
func (r *Registry) Speculars() []float32 {
	return r.colors(func(l Light) [3]float32 { return l.Specular })
}

// EnabledFlags returns 1 for each enabled light and 0 otherwise, padded to MaxLights.
func (r *Registry) EnabledFlags() []int32 {
	result := make([]int32, MaxLights)
	for i, light := range r.lights {
		if light.Enabled {
			result[i] = 1
		}
	}
	return result
}

func (r *Registry) colors(pick func(Light) [3]float32) []float32 {
	result := make([]float32, MaxLights*3)
	for i, light := range r.lights {
		c := pick(light)
		copy(result[i*3:i*3+3], c[:])
	}
	return result
}

func clampColor(c [3]float32) [3]float32 {
	for i := range c {
		c[i] = math.Clamp(c[i], 0, 1)
	}
	return c
}
