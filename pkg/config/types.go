package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent upvector configuration stored as
// config.toml in the .upvector/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Index     IndexConfig     `toml:"index"`
	Transport TransportConfig `toml:"transport"`
	Emulator  EmulatorConfig  `toml:"emulator"`
	MCP       MCPConfig       `toml:"mcp"`
}

// IndexConfig selects the index CLI commands talk to.
type IndexConfig struct {
	URL       string `toml:"url,omitempty"`
	Token     string `toml:"token,omitempty"`
	Namespace string `toml:"namespace,omitempty"`
}

// TransportConfig holds the HTTP retry policy. Durations use Go syntax
// (e.g. "1s", "250ms").
type TransportConfig struct {
	Retries          int     `toml:"retries"`
	RetryInterval    string  `toml:"retry_interval,omitempty"`
	MaxRetryInterval string  `toml:"max_retry_interval,omitempty"`
	Timeout          string  `toml:"timeout,omitempty"`
	RateLimit        float64 `toml:"rate_limit,omitempty"`
	DisableTelemetry bool    `toml:"disable_telemetry,omitempty"`
}

// EmulatorConfig holds settings for "upvector emulate".
type EmulatorConfig struct {
	Listen            string `toml:"listen,omitempty"`
	Token             string `toml:"token,omitempty"`
	IndexType         string `toml:"index_type,omitempty"`
	Dimension         uint   `toml:"dimension,omitempty"`
	Similarity        string `toml:"similarity,omitempty"`
	EmbeddingProvider string `toml:"embedding_provider,omitempty"`
	EmbeddingTarget   string `toml:"embedding_target,omitempty"`
	EmbeddingModel    string `toml:"embedding_model,omitempty"`
}

// MCPConfig holds settings for "upvector mcp".
type MCPConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if v != "" {
				if _, err := time.ParseDuration(v); err != nil {
					return fmt.Errorf("invalid value for %s: %w", name, err)
				}
			}
			*field(c) = v
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"index.url":       stringKey(func(c *Config) *string { return &c.Index.URL }),
	"index.token":     stringKey(func(c *Config) *string { return &c.Index.Token }),
	"index.namespace": stringKey(func(c *Config) *string { return &c.Index.Namespace }),

	"transport.retries": {
		get: func(c *Config) string { return strconv.Itoa(c.Transport.Retries) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for transport.retries: %q is not a non-negative integer", v)
			}
			c.Transport.Retries = n
			return nil
		},
	},
	"transport.retry_interval":     durationKey("transport.retry_interval", func(c *Config) *string { return &c.Transport.RetryInterval }),
	"transport.max_retry_interval": durationKey("transport.max_retry_interval", func(c *Config) *string { return &c.Transport.MaxRetryInterval }),
	"transport.timeout":            durationKey("transport.timeout", func(c *Config) *string { return &c.Transport.Timeout }),
	"transport.rate_limit": {
		get: func(c *Config) string {
			if c.Transport.RateLimit == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Transport.RateLimit, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.Transport.RateLimit = 0
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for transport.rate_limit: %w", err)
			}
			c.Transport.RateLimit = f
			return nil
		},
	},
	"transport.disable_telemetry": boolKey("transport.disable_telemetry", func(c *Config) *bool { return &c.Transport.DisableTelemetry }),

	"emulator.listen":     stringKey(func(c *Config) *string { return &c.Emulator.Listen }),
	"emulator.token":      stringKey(func(c *Config) *string { return &c.Emulator.Token }),
	"emulator.index_type": stringKey(func(c *Config) *string { return &c.Emulator.IndexType }),
	"emulator.dimension": {
		get: func(c *Config) string {
			if c.Emulator.Dimension == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Emulator.Dimension), 10)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.Emulator.Dimension = 0
				return nil
			}
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for emulator.dimension: %w", err)
			}
			c.Emulator.Dimension = uint(n)
			return nil
		},
	},
	"emulator.similarity":         stringKey(func(c *Config) *string { return &c.Emulator.Similarity }),
	"emulator.embedding_provider": stringKey(func(c *Config) *string { return &c.Emulator.EmbeddingProvider }),
	"emulator.embedding_target":   stringKey(func(c *Config) *string { return &c.Emulator.EmbeddingTarget }),
	"emulator.embedding_model":    stringKey(func(c *Config) *string { return &c.Emulator.EmbeddingModel }),

	"mcp.listen": stringKey(func(c *Config) *string { return &c.MCP.Listen }),
}

// orderedKeys lists the keys in TOML section order.
var orderedKeys = []string{
	"index.url",
	"index.token",
	"index.namespace",
	"transport.retries",
	"transport.retry_interval",
	"transport.max_retry_interval",
	"transport.timeout",
	"transport.rate_limit",
	"transport.disable_telemetry",
	"emulator.listen",
	"emulator.token",
	"emulator.index_type",
	"emulator.dimension",
	"emulator.similarity",
	"emulator.embedding_provider",
	"emulator.embedding_target",
	"emulator.embedding_model",
	"mcp.listen",
}

// secretKeys are masked by Configer.DisplayValue.
var secretKeys = map[string]bool{
	"index.token":    true,
	"emulator.token": true,
}
