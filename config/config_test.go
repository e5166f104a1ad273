package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v, want default %+v", cfg, Default())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	content := "log_level = \"debug\"\ntrace_dir = \"/tmp/traces\"\nport_buffer_capacity = 16\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.TraceDir != "/tmp/traces" || cfg.PortBufferCapacity != 16 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadDotEnvMissingFileIsNotError(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
}

func TestLoadDotEnvSeedsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PIPEWIRE_RUNTIME_DIR=/tmp/pw-test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	os.Unsetenv("PIPEWIRE_RUNTIME_DIR")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("PIPEWIRE_RUNTIME_DIR"); got != "/tmp/pw-test" {
		t.Fatalf("PIPEWIRE_RUNTIME_DIR = %q, want /tmp/pw-test", got)
	}
}
