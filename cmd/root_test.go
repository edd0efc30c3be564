package cmd

import (
	"path/filepath"
	"testing"

	"github.com/kayz/muse/internal/config"
)

func TestRootDelegatesToLoopWhenToggled(t *testing.T) {
	cfgPath = filepath.Join(t.TempDir(), ".muse.yaml")
	defer func() { cfgPath = "" }()
	t.Setenv("MUSE_LOOP", "true")

	called := false
	orig := loopRunner
	loopRunner = func(cfg *config.Config) error {
		called = true
		if !cfg.Loop {
			t.Fatalf("loop toggle not carried into config")
		}
		return nil
	}
	defer func() { loopRunner = orig }()

	if err := runOnce(rootCmd, nil); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	if !called {
		t.Fatalf("MUSE_LOOP=true must hand off to the loop runner")
	}
}

func TestRootRunsOnceWithoutLoopToggle(t *testing.T) {
	cfgPath = filepath.Join(t.TempDir(), ".muse.yaml")
	defer func() { cfgPath = "" }()

	called := false
	orig := loopRunner
	loopRunner = func(cfg *config.Config) error {
		called = true
		return nil
	}
	defer func() { loopRunner = orig }()

	// No credentials and no dry-run flag: the single-cycle path fails
	// validation, which proves it was taken.
	err := runOnce(rootCmd, nil)
	if called {
		t.Fatalf("loop runner must not run without the toggle")
	}
	if err == nil {
		t.Fatalf("expected a validation error on the single-cycle path")
	}
}
