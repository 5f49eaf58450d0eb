package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
database:
  host: localhost
  port: 5432
  name: test_db
  user: testuser
  password: testpass
redis:
  addr: localhost:6379
ingest:
  workers: 8
  chunk_size: 2000
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, "localhost:6379")
	}
	if cfg.Ingest.Workers != 8 {
		t.Errorf("Ingest.Workers = %d, want 8", cfg.Ingest.Workers)
	}
	if cfg.Ingest.ChunkSize != 2000 {
		t.Errorf("Ingest.ChunkSize = %d, want 2000", cfg.Ingest.ChunkSize)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  host: localhost
  name: test_db
  user: testuser
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database.MaxConns = %d, want default %d", cfg.Database.MaxConns, DefaultMaxConns)
	}
	if cfg.Ingest.ChunkSize != DefaultIngestChunkSize {
		t.Errorf("Ingest.ChunkSize = %d, want default %d", cfg.Ingest.ChunkSize, DefaultIngestChunkSize)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Cache.TTL = %v, want default %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Broadcast.Interval != DefaultBroadcastInterval {
		t.Errorf("Broadcast.Interval = %v, want default %v", cfg.Broadcast.Interval, DefaultBroadcastInterval)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DBConfig{
			Host: "localhost", Name: "db", User: "user", Password: "pass",
			MaxConns: 10, MinConns: 2,
		},
		Ingest:    IngestConfig{Workers: 4, ChunkSize: 3000},
		Cache:     CacheConfig{TTL: 300 * time.Second},
		Broadcast: BroadcastConfig{Interval: 5 * time.Second, PageSize: 100},
		Metrics:   MetricsConfig{Port: 9090},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host is required",
		},
		{
			name:    "missing database password",
			mutate:  func(c *Config) { c.Database.Password = "" },
			wantErr: "database.password is required",
		},
		{
			name:    "min_conns exceeds max_conns",
			mutate:  func(c *Config) { c.Database.MinConns = 20 },
			wantErr: "database.min_conns (20) cannot exceed max_conns (10)",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Ingest.Workers = 0 },
			wantErr: "ingest.workers must be >= 1",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Ingest.ChunkSize = 0 },
			wantErr: "ingest.chunk_size must be >= 1",
		},
		{
			name:    "oversized page size",
			mutate:  func(c *Config) { c.Broadcast.PageSize = 5000 },
			wantErr: "broadcast.page_size must be between 1 and 1000, got 5000",
		},
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
