package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cm, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	cfg := cm.Get()
	if cfg.OCR.Engine != "tesseract" || cfg.OCR.DPI != 300 || cfg.Scheduler.PageDelay != 100*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.OCR.Languages) != 1 || cfg.OCR.Languages[0] != "eng" {
		t.Fatalf("languages = %v", cfg.OCR.Languages)
	}
	if cfg.OCR.Timeout != 0 {
		t.Fatalf("timeout should be disabled by default, got %v", cfg.OCR.Timeout)
	}
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchify.yaml")
	body := "ocr:\n  engine: noop\n  timeout: 2s\n  languages: [eng, deu]\nscheduler:\n  page_delay: 250ms\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("SEARCHIFY_OCR_DPI", "150")
	t.Setenv("SEARCHIFY_LOG_LEVEL", "debug")

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	cfg := cm.Get()
	if cfg.OCR.Engine != "noop" || cfg.OCR.Timeout != 2*time.Second || cfg.Scheduler.PageDelay != 250*time.Millisecond {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if strings.Join(cfg.OCR.Languages, ",") != "eng,deu" {
		t.Fatalf("languages = %v", cfg.OCR.Languages)
	}
	if cfg.OCR.DPI != 150 || cfg.Log.Level != "debug" {
		t.Fatalf("env values not applied: dpi=%d level=%s", cfg.OCR.DPI, cfg.Log.Level)
	}
	if cm.ConfigFileUsed() != path {
		t.Fatalf("ConfigFileUsed() = %q", cm.ConfigFileUsed())
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("ocr:\n  engine: magic\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := NewManager(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := NewManager(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dpi", func(c *Config) { c.OCR.DPI = 0 }},
		{"timeout", func(c *Config) { c.OCR.Timeout = -time.Second }},
		{"cache", func(c *Config) { c.OCR.CacheSize = -1 }},
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestWriteDefaultLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchify.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if cfg := cm.Get(); cfg.OCR.CacheSize != 256 || cfg.Scheduler.PageDelay != 100*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestWhitelistFromEnv(t *testing.T) {
	t.Setenv("SEARCHIFY_OCR_WHITELIST", "0123456789")
	cm, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if got := cm.Get().OCR.Whitelist; got != "0123456789" {
		t.Fatalf("whitelist = %q", got)
	}
}

func TestReloadNotifiesCallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchify.yaml")
	if err := os.WriteFile(path, []byte("ocr:\n  dpi: 200\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	var got *Config
	cm.OnChange(func(c *Config) { got = c })

	if err := os.WriteFile(path, []byte("ocr:\n  dpi: 400\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := cm.v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	cm.reload()
	if got == nil || got.OCR.DPI != 400 || cm.Get().OCR.DPI != 400 {
		t.Fatalf("callback not run with new config: %+v", got)
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "WARN"
	if cfg.SlogLevel().String() != "WARN" {
		t.Fatalf("SlogLevel() = %v", cfg.SlogLevel())
	}
}
