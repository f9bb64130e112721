package config

import (
	"flag"
	"os"
)

// Flags are the command-line overrides. Zero values mean "not set".
type Flags struct {
	Config     string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Cascades   int
	LightMode  string
}

// RegisterFlags defines the viewer flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging and GL error checks")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.IntVar(&f.Cascades, "cascades", 0, "Number of shadow cascades (1-8)")
	fs.StringVar(&f.LightMode, "light-mode", "", "Light mode: static, orbit or point")
	return f
}

// ParseFlags registers and parses the flags of the process command line.
// Call this early in main().
func ParseFlags() *Flags {
	f := RegisterFlags(flag.CommandLine)
	_ = flag.CommandLine.Parse(os.Args[1:])
	return f
}

// apply copies the set flags onto cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
		cfg.Debug.CheckGLErrors = true
	}
	if f.Windowed {
		cfg.Graphics.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Graphics.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Graphics.Height = f.Height
	}
	if f.Cascades > 0 {
		cfg.Shadows.Cascades = f.Cascades
	}
	if f.LightMode != "" {
		cfg.Light.Mode = f.LightMode
	}
}
