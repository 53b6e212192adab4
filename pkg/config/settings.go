package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/papercomputeco/upvector/pkg/index"
	"github.com/papercomputeco/upvector/pkg/vector"
)

// IndexClientConfig resolves the client settings from v.
func IndexClientConfig(v *viper.Viper) (index.Config, error) {
	c := index.Config{
		URL:              v.GetString("index.url"),
		Token:            v.GetString("index.token"),
		Retries:          v.GetInt("transport.retries"),
		RateLimit:        v.GetFloat64("transport.rate_limit"),
		DisableTelemetry: v.GetBool("transport.disable_telemetry"),
	}
	if c.URL == "" {
		return index.Config{}, fmt.Errorf("no index URL configured: set --url, %s or index.url", EnvUpstashURL)
	}
	if c.Token == "" {
		return index.Config{}, fmt.Errorf("no index token configured: set --token, %s or index.token", EnvUpstashToken)
	}
	if c.Retries < 0 {
		return index.Config{}, fmt.Errorf("transport.retries must not be negative, got %d", c.Retries)
	}

	var err error
	if c.RetryInterval, err = duration(v, "transport.retry_interval"); err != nil {
		return index.Config{}, err
	}
	if c.MaxRetryInterval, err = duration(v, "transport.max_retry_interval"); err != nil {
		return index.Config{}, err
	}
	if c.Timeout, err = duration(v, "transport.timeout"); err != nil {
		return index.Config{}, err
	}
	return c, nil
}

// Namespace resolves the namespace CLI commands operate on.
func Namespace(v *viper.Viper) vector.Namespace {
	return vector.NamedNamespace(v.GetString("index.namespace"))
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return d, nil
}
