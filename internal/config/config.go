// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	gomath "math"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// MaxCascades bounds shadows.cascades.
const MaxCascades = 8

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Shadows  ShadowConfig   `yaml:"shadows"`
	Light    LightConfig    `yaml:"light"`
	Scene    SceneConfig    `yaml:"scene"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// CameraConfig holds the main camera lens and starting pose.
type CameraConfig struct {
	FOVDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Position   [3]float32 `yaml:"position"`
	Target     [3]float32 `yaml:"target"`
}

// ShadowConfig holds cascaded shadow map settings.
type ShadowConfig struct {
	Enabled             bool    `yaml:"enabled"`
	Cascades            int     `yaml:"cascades"`
	Lambda              float32 `yaml:"lambda"`
	Resolution          int     `yaml:"resolution"`
	PolygonOffsetFactor float32 `yaml:"polygon_offset_factor"`
	PolygonOffsetUnits  float32 `yaml:"polygon_offset_units"`
	TightenBounds       bool    `yaml:"tighten_bounds"`
	TintCascades        bool    `yaml:"tint_cascades"`
}

// LightConfig holds the shadow-casting light.
type LightConfig struct {
	Mode string `yaml:"mode"` // static, orbit or point
	// Position places the light directly. When it is all zero, the light
	// sits along Azimuth/Elevation (degrees) at Distance from Target.
	Position   [3]float32 `yaml:"position"`
	Target     [3]float32 `yaml:"target"`
	Azimuth    float32    `yaml:"azimuth"`
	Elevation  float32    `yaml:"elevation"`
	Distance   float32    `yaml:"distance"`
	OrbitSpeed float32    `yaml:"orbit_speed"` // radians per second
	Ambient    [3]float32 `yaml:"ambient"`
	Diffuse    [3]float32 `yaml:"diffuse"`
	Specular   [3]float32 `yaml:"specular"`
	// Point light lens.
	FOVDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// SceneConfig holds the procedural scene layout.
type SceneConfig struct {
	GroundTexture string  `yaml:"ground_texture"`
	GroundSize    float32 `yaml:"ground_size"`
	GridSize      int     `yaml:"grid_size"`
	Spacing       float32 `yaml:"spacing"`
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
	ShowFrusta    bool   `yaml:"show_frusta"`
	CheckGLErrors bool   `yaml:"check_gl_errors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			FOVDegrees: 60,
			Near:       1,
			Far:        1000,
			Position:   [3]float32{0, 60, 220},
			Target:     [3]float32{0, 0, 0},
		},
		Shadows: ShadowConfig{
			Enabled:             true,
			Cascades:            4,
			Lambda:              0.5,
			Resolution:          2048,
			PolygonOffsetFactor: 2,
			PolygonOffsetUnits:  4,
		},
		Light: LightConfig{
			Mode:       "static",
			Azimuth:    35,
			Elevation:  50,
			Distance:   300,
			OrbitSpeed: 0.3,
			Ambient:    [3]float32{0.15, 0.15, 0.15},
			Diffuse:    [3]float32{0.9, 0.9, 0.85},
			Specular:   [3]float32{0.4, 0.4, 0.4},
			FOVDegrees: 120,
			Near:       1,
			Far:        1500,
		},
		Scene: SceneConfig{
			GroundSize: 800,
			GridSize:   9,
			Spacing:    40,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the invariants the renderer relies on.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		fail("graphics size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if !finite(c.Camera.Near) || !finite(c.Camera.Far) || c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		fail("camera near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		fail("camera fov_degrees=%g", c.Camera.FOVDegrees)
	}
	if c.Camera.Position == c.Camera.Target {
		fail("camera position equals target")
	}
	if c.Shadows.Cascades < 1 || c.Shadows.Cascades > MaxCascades {
		fail("shadows.cascades=%d, want 1..%d", c.Shadows.Cascades, MaxCascades)
	}
	if c.Shadows.Lambda < 0 || c.Shadows.Lambda > 1 {
		fail("shadows.lambda=%g, want 0..1", c.Shadows.Lambda)
	}
	if c.Shadows.Resolution <= 0 {
		fail("shadows.resolution=%d", c.Shadows.Resolution)
	}
	switch c.Light.Mode {
	case "", "static", "orbit", "point":
	default:
		fail("light.mode=%q", c.Light.Mode)
	}
	if c.Light.Mode == "point" {
		if c.Light.Near <= 0 || c.Light.Far <= c.Light.Near {
			fail("light near=%g far=%g", c.Light.Near, c.Light.Far)
		}
		if c.Light.FOVDegrees <= 0 || c.Light.FOVDegrees >= 180 {
			fail("light fov_degrees=%g", c.Light.FOVDegrees)
		}
	}
	if c.Light.Position == ([3]float32{}) && c.Light.Distance <= 0 {
		fail("light needs a position or a positive distance")
	}
	if c.Scene.GridSize < 0 {
		fail("scene.grid_size=%d", c.Scene.GridSize)
	}
	if c.Scene.GroundSize <= 0 {
		fail("scene.ground_size=%g", c.Scene.GroundSize)
	}

	return errors.Join(errs...)
}

func finite(v float32) bool {
	return !gomath.IsNaN(float64(v)) && !gomath.IsInf(float64(v), 0)
}
