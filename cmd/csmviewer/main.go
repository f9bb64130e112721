// Package main is the entry point for the cascaded shadow map viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/cascadeview/internal/config"
	"github.com/Faultbox/cascadeview/internal/logger"
	"github.com/Faultbox/cascadeview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	flags := config.ParseFlags()

	// Load configuration
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

// run keeps the deferred cleanup ahead of os.Exit.
func run(cfg *config.Config) int {
	defer logger.Sync()

	logger.Info("=== Cascaded Shadow Map Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return 1
	}
	defer s.Close()

	if err := s.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}
