package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/upvector/pkg/dotdir"
)

const (
	// EnvPrefix prefixes every environment override, e.g. UPVECTOR_INDEX_URL.
	EnvPrefix = "UPVECTOR"

	// EnvUpstashURL and EnvUpstashToken are honored for index.url and
	// index.token after their UPVECTOR_ equivalents.
	EnvUpstashURL   = "UPSTASH_VECTOR_REST_URL"
	EnvUpstashToken = "UPSTASH_VECTOR_REST_TOKEN"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the UPVECTOR_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (UPVECTOR_INDEX_URL, UPSTASH_VECTOR_REST_URL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: UPVECTOR_INDEX_URL, UPVECTOR_TRANSPORT_RETRIES, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The hosted service documents its own variable names.
	_ = v.BindEnv("index.url", EnvPrefix+"_INDEX_URL", EnvUpstashURL)
	_ = v.BindEnv("index.token", EnvPrefix+"_INDEX_TOKEN", EnvUpstashToken)

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	for _, key := range orderedKeys {
		v.SetDefault(key, configKeys[key].get(d))
	}
}
