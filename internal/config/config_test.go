package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jcastillo-osint/guardian-pipeline/internal/config"
	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Backend != llm.BackendOllama || cfg.LLM.Model != "llama3.2" {
		t.Errorf("llm defaults = %q, %q", cfg.LLM.Backend, cfg.LLM.Model)
	}
	if !cfg.Geocode.Enabled || cfg.Geocode.CachePath != "geocode_cache.json" {
		t.Errorf("geocode defaults = %+v", cfg.Geocode)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("store driver = %q", cfg.Store.Driver)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if cfg.Output.JSONLPath != "guardian_cases.jsonl" || cfg.Output.CSVPath != "guardian_cases.csv" {
		t.Errorf("output defaults = %+v", cfg.Output)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	yaml := "llm:\n  backend: ollama\n  model: mistral\nworkers: 8\ngeocode:\n  cache_only: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "mistral" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if !cfg.Geocode.CacheOnly {
		t.Error("cache_only not read from file")
	}
	// Keys the file does not mention keep their defaults.
	if cfg.Output.JSONLPath != "guardian_cases.jsonl" {
		t.Errorf("jsonl_path = %q", cfg.Output.JSONLPath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GUARDIAN_LLM_MODEL", "qwen2.5")
	t.Setenv("GUARDIAN_WORKERS", "2")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "qwen2.5" {
		t.Errorf("model = %q, want env override", cfg.LLM.Model)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers = %d, want env override", cfg.Workers)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing config file should be an error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults ok", func(c *config.Config) {}, false},
		{"openai needs key", func(c *config.Config) { c.LLM.Backend = llm.BackendOpenAI }, true},
		{"openai with key", func(c *config.Config) {
			c.LLM.Backend = llm.BackendOpenAI
			c.LLM.APIKey = "sk-test"
		}, false},
		{"zero workers", func(c *config.Config) { c.Workers = 0 }, true},
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "oracle" }, true},
		{"empty driver ok", func(c *config.Config) { c.Store.Driver = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				LLM:     llm.DefaultConfig(),
				Workers: 4,
				Store:   config.StoreConfig{Driver: "sqlite"},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
