package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultIngestWorkers     = 4
	DefaultIngestChunkSize   = 3000
	DefaultCacheTTL          = 300 * time.Second
	DefaultBroadcastListen   = ":8081"
	DefaultBroadcastInterval = 5 * time.Second
	DefaultBroadcastPageSize = 100
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
)

func (c *Config) applyDefaults() {
	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Ingestion defaults
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = DefaultIngestWorkers
	}
	if c.Ingest.ChunkSize == 0 {
		c.Ingest.ChunkSize = DefaultIngestChunkSize
	}

	// Cache defaults
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	// Broadcaster defaults
	if c.Broadcast.Listen == "" {
		c.Broadcast.Listen = DefaultBroadcastListen
	}
	if c.Broadcast.Interval == 0 {
		c.Broadcast.Interval = DefaultBroadcastInterval
	}
	if c.Broadcast.PageSize == 0 {
		c.Broadcast.PageSize = DefaultBroadcastPageSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
