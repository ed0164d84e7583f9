// Copyright 2026 © The Substrate Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "substrate.yaml")
	writeConfig(t, path, "memory:\n  stm_capacity: 4\n")

	w, err := NewWatcher([]string{path}, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if got := w.Config().Memory.STMCapacity; got != 4 {
		t.Fatalf("initial config not loaded, stm_capacity=%d", got)
	}

	reloaded := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Ensure the mtime moves forward even on coarse-grained filesystems.
	time.Sleep(20 * time.Millisecond)
	writeConfig(t, path, "memory:\n  stm_capacity: 9\n")
	now := time.Now().Add(time.Second)
	if err := os.Chtimes(path, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Memory.STMCapacity != 9 {
			t.Errorf("reloaded stm_capacity=%d, want 9", cfg.Memory.STMCapacity)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

// WatchConfig is the entry point the CLI uses for --watch. The listener
// swaps the new config into a ReloadableConfig, so readers on other
// goroutines observe the change atomically.
func TestWatchConfigSwapsReloadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "substrate.yaml")
	writeConfig(t, path, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, cfg, err := WatchConfig(ctx, path, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("watch config: %v", err)
	}
	defer w.Stop()
	if cfg.Log.Level != "info" {
		t.Fatalf("initial log level %q", cfg.Log.Level)
	}

	rc := NewReloadableConfig(cfg)
	swapped := make(chan struct{}, 1)
	w.OnChange(func(next *Config) {
		rc.Update(next)
		select {
		case swapped <- struct{}{}:
		default:
		}
	})

	time.Sleep(20 * time.Millisecond)
	writeConfig(t, path, "log:\n  level: debug\n")
	now := time.Now().Add(time.Second)
	if err := os.Chtimes(path, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	select {
	case <-swapped:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	if got := rc.Log().Level; got != "debug" {
		t.Errorf("reloadable log level = %q, want debug", got)
	}
}

func TestReloadableConfig(t *testing.T) {
	initial, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rc := NewReloadableConfig(initial)
	if rc.Memory().STMCapacity != 7 {
		t.Fatalf("unexpected initial capacity %d", rc.Memory().STMCapacity)
	}

	updated := *initial
	updated.Memory.STMCapacity = 3
	rc.Update(&updated)

	if rc.Memory().STMCapacity != 3 {
		t.Errorf("update not visible, got %d", rc.Memory().STMCapacity)
	}
}
