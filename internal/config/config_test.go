package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		driver  string
		addrs   []string
		wantErr bool
	}{
		{DriverRedis, []string{"localhost:6379"}, false},
		{DriverValkey, []string{"localhost:6379"}, false},
		{DriverMemory, nil, false},
		{DriverRedis, nil, true},
		{DriverValkey, []string{}, true},
		{"postgres", []string{"localhost:5432"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.Driver = tt.driver
			cfg.Database.Addrs = tt.addrs

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidAlgorithm(t *testing.T) {
	cfg := validConfig()
	cfg.Index.Algorithm = "ivf"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
	expected := `index.algorithm: unknown vector algorithm "ivf" (want hnsw or flat)`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Temperature(t *testing.T) {
	cfg := validConfig()
	hot := float32(2.5)
	cfg.Completion.Temperature = &hot

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for temperature out of range")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.CompletionSettings().Temperature != 0.2 || cfg.Completion.MaxTokens != 600 {
		t.Errorf("unexpected completion defaults: %+v", cfg.Completion)
	}
	if cfg.Index.Algorithm != "hnsw" || cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("unexpected index defaults: %+v", cfg.Index)
	}
	if cfg.Index.MinRows != 1 || cfg.Index.MaxBatchSize != 1000 {
		t.Errorf("unexpected ingest defaults: %+v", cfg.Index)
	}
	if cfg.Storage.KeyPrefix != "estaterag:" {
		t.Errorf("expected KeyPrefix='estaterag:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_CompletionInheritsProvider(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Provider: "nebius", APIKey: "k", BaseURL: "https://api.example.com/v1/"}}
	cfg.ApplyDefaults()

	if cfg.Completion.Provider != "nebius" || cfg.Completion.APIKey != "k" ||
		cfg.Completion.BaseURL != "https://api.example.com/v1/" {
		t.Errorf("completion did not inherit provider settings: %+v", cfg.Completion)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Index:    IndexConfig{Algorithm: "flat", HNSWM: 32, HNSWEFConstruct: 400, MinRows: 5, MaxBatchSize: 50},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	idx := cfg.IndexSettings()
	if idx.Algorithm != "flat" || idx.M != 32 || idx.EFConstruction != 400 || idx.MinRows != 5 {
		t.Errorf("unexpected index settings: %+v", idx)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("ESTATERAG_TEST_KEY", "secret")

	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte(`
http:
  port: ${ESTATERAG_TEST_PORT:-9090}
database:
  driver: memory
embedding:
  api_key: ${ESTATERAG_TEST_KEY}
  dimensions: 8
completion:
  max_tokens: 300
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "secret" || cfg.Completion.APIKey != "secret" {
		t.Errorf("api keys = %q, %q", cfg.Embedding.APIKey, cfg.Completion.APIKey)
	}
	if cfg.Embedding.Dimensions != 8 || cfg.Completion.MaxTokens != 300 {
		t.Errorf("unexpected values: %+v %+v", cfg.Embedding, cfg.Completion)
	}
	if cfg.EmbeddingTimeout().Seconds() != 30 {
		t.Errorf("embedding timeout = %v", cfg.EmbeddingTimeout())
	}
}

func TestLoadFile_ZeroTemperatureIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte(`
http:
  port: 8080
database:
  driver: memory
completion:
  temperature: 0
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := cfg.CompletionSettings().Temperature; got != 0 {
		t.Errorf("temperature = %v, want 0", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
