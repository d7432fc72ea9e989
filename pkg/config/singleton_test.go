package config

import (
	"os"
	"testing"
)

func TestInitialize(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8181"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("Expected non-nil config after Initialize")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:8181" {
		t.Errorf("Expected listen address %q, got %q", "127.0.0.1:8181", cfg.Server.ListenAddress)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	first := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:1111\"\n")
	second := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:2222\"\n")

	if err := Initialize(first); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := Initialize(second); err != nil {
		t.Fatalf("second Initialize() failed: %v", err)
	}

	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:1111" {
		t.Errorf("Expected first config to win, got %q", got)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("Expected nil config before Initialize, got %+v", cfg)
	}
}

func TestSetConfig_NotifiesListeners(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	var calls int
	var gotOld, gotNew *Config
	OnChange(func(old, updated *Config) {
		calls++
		gotOld, gotNew = old, updated
	})

	first := Default()
	SetConfig(first)
	second := Default()
	SetConfig(second)

	if calls != 2 {
		t.Fatalf("Expected 2 listener calls, got %d", calls)
	}
	if gotOld != first || gotNew != second {
		t.Error("Listener received wrong configs")
	}
	if GetConfig() != second {
		t.Error("GetConfig did not return the latest config")
	}
}

func TestReloadConfig(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	path := writeConfig(t, "moderation:\n  failure_mode: open\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("moderation:\n  failure_mode: closed\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() failed: %v", err)
	}

	if got := GetConfig().Moderation.FailureMode; got != "closed" {
		t.Errorf("Expected failure mode closed after reload, got %q", got)
	}
}

func TestReloadConfig_ValidationFailureKeepsCurrent(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	path := writeConfig(t, "moderation:\n  failure_mode: closed\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	before := GetConfig()

	if err := os.WriteFile(path, []byte("moderation:\n  failure_mode: bogus\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := ReloadConfig(path); err == nil {
		t.Fatal("Expected reload to fail")
	}

	if GetConfig() != before {
		t.Error("Expected previous config to remain after failed reload")
	}
}

func TestMustGetConfig(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected MustGetConfig to panic before Initialize")
		}
	}()
	MustGetConfig()
}

func TestMustGetConfig_AfterSet(t *testing.T) {
	resetForTesting()
	t.Cleanup(resetForTesting)

	cfg := Default()
	SetConfig(cfg)
	if MustGetConfig() != cfg {
		t.Error("MustGetConfig returned a different config")
	}
}
