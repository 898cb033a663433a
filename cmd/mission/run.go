package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vinayprograms/mission/internal/config"
)

// Run loads configuration, applies CLI overrides, and drives one mission to
// a terminal state. A failed or exhausted mission surfaces as a non-zero
// exit so wrappers can branch on the outcome.
func (r *RunCmd) Run() error {
	cfg, err := loadConfig(r.Config)
	if err != nil {
		return err
	}

	// Apply CLI overrides
	if r.Identity != "" {
		cfg.Mission.Identity = r.Identity
	}
	if r.Bundle != "" {
		cfg.Mission.Bundle = r.Bundle
	}
	if r.MaxIterations > 0 {
		cfg.Mission.MaxIterations = r.MaxIterations
	}
	if r.Workspace != "" {
		cfg.Mission.Workspace = r.Workspace
	}
	if cfg.Mission.Workspace == "" {
		cfg.Mission.Workspace, _ = os.Getwd()
	}
	if !filepath.IsAbs(cfg.Mission.Workspace) {
		cfg.Mission.Workspace, _ = filepath.Abs(cfg.Mission.Workspace)
	}

	rt := newRuntime(cfg, r.Goal, runtimeOptions{
		policyPath: r.Policy,
		solo:       r.Solo,
		noRecord:   r.NoRecord,
	})
	defer rt.cleanup()
	if err := rt.setup(); err != nil {
		return err
	}
	return rt.run(context.Background())
}

// loadConfig loads the named config file, or mission.toml from the current
// directory, or built-in defaults when neither exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadDefault()
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
