package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 call, got %d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(120 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("Expected no calls after Stop, got %d", got)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	path := writeConfig(t, "moderation:\n  failure_mode: open\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	changed := make(chan *Config, 1)
	OnChange(func(_, updated *Config) {
		select {
		case changed <- updated:
		default:
		}
	})

	w, err := NewWatcher(path, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, nil)
	defer w.Stop()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("moderation:\n  failure_mode: closed\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Moderation.FailureMode != "closed" {
			t.Errorf("Expected failure mode closed, got %q", cfg.Moderation.FailureMode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func TestWatcher_InvalidFileKeepsConfig(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	path := writeConfig(t, "moderation:\n  failure_mode: open\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	before := GetConfig()

	errs := make(chan error, 1)
	w, err := NewWatcher(path, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("moderation:\n  failure_mode: sideways\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case <-errs:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for reload error")
	}
	if GetConfig() != before {
		t.Error("Expected config to be unchanged after invalid reload")
	}
}

func TestNewWatcher_RequiresPath(t *testing.T) {
	if _, err := NewWatcher("", 0, nil); err == nil {
		t.Error("Expected error for empty path")
	}
}
