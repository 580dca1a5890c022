package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.MaxPeers != 5 {
		t.Errorf("MaxPeers = %d, want 5", cfg.MaxPeers)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q, want empty", cfg.Path())
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := `{"pin": "1234", "port": 9100, "log": {"level": "debug"}}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PADCTL_PIN", "5678")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.PIN != "5678" {
		t.Errorf("PIN = %q, environment should win", cfg.PIN)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("bad JSON accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) { c.PIN = "1234" }, false},
		{"eight digits", func(c *Config) { c.PIN = "12345678" }, false},
		{"missing pin", func(c *Config) {}, true},
		{"short pin", func(c *Config) { c.PIN = "123" }, true},
		{"long pin", func(c *Config) { c.PIN = "123456789" }, true},
		{"non-digit pin", func(c *Config) { c.PIN = "12ab" }, true},
		{"bad port", func(c *Config) { c.PIN = "1234"; c.Port = -1 }, true},
		{"zero peers", func(c *Config) { c.PIN = "1234"; c.MaxPeers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.PIN = "1234"
	cfg.Name = "desk"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.PIN != "1234" || loaded.Name != "desk" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}
