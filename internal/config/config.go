package config

import "time"

// Config is the root configuration for the tick data engine.
type Config struct {
	Database  DBConfig        `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Cache     CacheConfig     `yaml:"cache"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds the cache connection. An empty Addr disables Redis and
// the read cache falls back to the in-process store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// IngestConfig holds bulk ingestion settings.
type IngestConfig struct {
	Workers   int `yaml:"workers"`    // Parallel batch workers
	ChunkSize int `yaml:"chunk_size"` // Tick rows per bulk-insert chunk
}

// CacheConfig holds read-cache settings.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// BroadcastConfig holds live snapshot broadcaster settings.
type BroadcastConfig struct {
	Listen   string        `yaml:"listen"`    // streamd websocket listen address
	Interval time.Duration `yaml:"interval"`  // Per-subscriber push interval
	PageSize int           `yaml:"page_size"` // Snapshot page size pushed to subscribers
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
