package config

import (
	"sync"
	"testing"
)

func resetGlobal() {
	SetConfig(nil)
	initOnce = *new(sync.Once)
}

func TestInitialize(t *testing.T) {
	clearEnv(t)
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:8080", cfg.Server.ListenAddress)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	clearEnv(t)
	resetGlobal()
	t.Cleanup(resetGlobal)

	first := writeConfig(t, "server:\n  listen_address: \":1111\"\n")
	second := writeConfig(t, "server:\n  listen_address: \":2222\"\n")

	if err := Initialize(first); err != nil {
		t.Fatalf("Initialize(first) = %v", err)
	}
	if err := Initialize(second); err != nil {
		t.Fatalf("Initialize(second) = %v", err)
	}

	if got := GetConfig().Server.ListenAddress; got != ":1111" {
		t.Errorf("ListenAddress = %q, want %q", got, ":1111")
	}
}

func TestReloadConfig_KeepsPreviousOnError(t *testing.T) {
	clearEnv(t)
	resetGlobal()
	t.Cleanup(resetGlobal)

	prev := NewTestConfig().Build()
	SetConfig(prev)

	bad := writeConfig(t, "mail:\n  port: -1\n")
	if err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload error")
	}
	if GetConfig() != prev {
		t.Error("configuration replaced despite reload failure")
	}

	good := writeConfig(t, "liststore:\n  primary_list: \"Reloaded\"\n")
	if err := ReloadConfig(good); err != nil {
		t.Fatalf("ReloadConfig() = %v", err)
	}
	if got := GetConfig().ListStore.PrimaryList; got != "Reloaded" {
		t.Errorf("PrimaryList = %q, want Reloaded", got)
	}
}

func TestGetConfig_NilBeforeInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("GetConfig() = %+v, want nil", cfg)
	}
}

func TestGetConfig_Concurrent(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)
	SetConfig(NewTestConfig().Build())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = GetConfig()
		}()
		go func() {
			defer wg.Done()
			SetConfig(NewTestConfig().Build())
		}()
	}
	wg.Wait()

	if GetConfig() == nil {
		t.Error("expected configuration after concurrent access")
	}
}
