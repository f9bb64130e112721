package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Camera.Near != 1 || cfg.Camera.Far != 1000 {
		t.Errorf("expected camera clip 1..1000, got %g..%g", cfg.Camera.Near, cfg.Camera.Far)
	}
	if !cfg.Shadows.Enabled || cfg.Shadows.Cascades != 4 || cfg.Shadows.Lambda != 0.5 {
		t.Errorf("unexpected shadow defaults %+v", cfg.Shadows)
	}
	if cfg.Shadows.PolygonOffsetFactor != 2 || cfg.Shadows.PolygonOffsetUnits != 4 {
		t.Errorf("expected polygon offset 2/4, got %g/%g", cfg.Shadows.PolygonOffsetFactor, cfg.Shadows.PolygonOffsetUnits)
	}
	if cfg.Shadows.TightenBounds {
		t.Error("expected raw frustum corners by default")
	}
	if cfg.Light.Mode != "static" {
		t.Errorf("expected static light, got %s", cfg.Light.Mode)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.LogFile != "" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

camera:
  fov_degrees: 45
  near: 0.5
  far: 800
  position: [10, 20, 30]

shadows:
  cascades: 3
  lambda: 0.75
  resolution: 4096
  tighten_bounds: true

light:
  mode: point
  position: [0, 150, 80]

scene:
  ground_texture: "textures/ground.tga"

logging:
  level: "debug"
  log_file: "csm.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || !cfg.Graphics.Fullscreen || cfg.Graphics.VSync {
		t.Errorf("graphics not loaded: %+v", cfg.Graphics)
	}
	if cfg.Camera.FOVDegrees != 45 || cfg.Camera.Near != 0.5 || cfg.Camera.Position != [3]float32{10, 20, 30} {
		t.Errorf("camera not loaded: %+v", cfg.Camera)
	}
	if cfg.Shadows.Cascades != 3 || cfg.Shadows.Lambda != 0.75 || cfg.Shadows.Resolution != 4096 || !cfg.Shadows.TightenBounds {
		t.Errorf("shadows not loaded: %+v", cfg.Shadows)
	}
	// Untouched keys keep their defaults.
	if !cfg.Shadows.Enabled || cfg.Shadows.PolygonOffsetUnits != 4 {
		t.Errorf("defaults lost: %+v", cfg.Shadows)
	}
	if cfg.Light.Mode != "point" || cfg.Light.Position != [3]float32{0, 150, 80} {
		t.Errorf("light not loaded: %+v", cfg.Light)
	}
	if cfg.Scene.GroundTexture != "textures/ground.tga" {
		t.Errorf("expected ground texture, got %q", cfg.Scene.GroundTexture)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "csm.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := map[string]string{
		"syntax":      "graphics:\n  width: not a number\n  invalid syntax here\n",
		"unknown key": "shadows:\n  cascade_count: 4\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"zero near", func(c *Config) { c.Camera.Near = 0 }},
		{"far below near", func(c *Config) { c.Camera.Far = 0.5 }},
		{"flat fov", func(c *Config) { c.Camera.FOVDegrees = 180 }},
		{"camera on target", func(c *Config) { c.Camera.Target = c.Camera.Position }},
		{"no cascades", func(c *Config) { c.Shadows.Cascades = 0 }},
		{"too many cascades", func(c *Config) { c.Shadows.Cascades = MaxCascades + 1 }},
		{"lambda above one", func(c *Config) { c.Shadows.Lambda = 1.5 }},
		{"no resolution", func(c *Config) { c.Shadows.Resolution = 0 }},
		{"unknown light mode", func(c *Config) { c.Light.Mode = "spot" }},
		{"point light clip", func(c *Config) { c.Light.Mode = "point"; c.Light.Near = 0 }},
		{"light nowhere", func(c *Config) { c.Light.Distance = 0 }},
		{"no ground", func(c *Config) { c.Scene.GroundSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	cfg := Default()
	cfg.Shadows.Cascades = MaxCascades
	cfg.Light.Mode = "orbit"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Debug.CheckGLErrors {
					t.Error("expected GL error checks with debug flag")
				}
			},
		},
		{
			name: "windowed flag",
			args: []string{"-windowed"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
		},
		{
			name: "fullscreen flag",
			args: []string{"-fullscreen"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
		},
		{
			name: "width and height flags",
			args: []string{"-width", "2560", "-height", "1440"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
		},
		{
			name: "cascades and light mode",
			args: []string{"-cascades", "6", "-light-mode", "orbit"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Shadows.Cascades != 6 {
					t.Errorf("expected 6 cascades, got %d", cfg.Shadows.Cascades)
				}
				if cfg.Light.Mode != "orbit" {
					t.Errorf("expected orbit light, got %s", cfg.Light.Mode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}
			cfg := Default()
			flags.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
shadows:
  cascades: 2
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(&Flags{Config: configPath, Width: 1920})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width comes from the flag, height and cascades from the file.
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if cfg.Shadows.Cascades != 2 {
		t.Errorf("expected 2 cascades from file, got %d", cfg.Shadows.Cascades)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("camera:\n  near: 10\n  far: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(&Flags{Config: configPath}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if _, err := Load(&Flags{Config: filepath.Join(tmpDir, "missing.yaml")}); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Shadows.Cascades = 5
	cfg.Light.Mode = "orbit"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Shadows.Cascades != 5 || loaded.Light.Mode != "orbit" {
		t.Errorf("saved values lost: %+v %+v", loaded.Shadows, loaded.Light)
	}
}
