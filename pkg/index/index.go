// Package index is the client for a hosted vector index. Each operation
// normalizes its input locally, performs one request through a
// transport.Executor and decodes the typed result.
package index

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/papercomputeco/upvector/pkg/transport"
)

const (
	// EnvURL names the environment variable read by FromEnv for the index URL.
	EnvURL = "UPSTASH_VECTOR_REST_URL"

	// EnvToken names the environment variable read by FromEnv for the token.
	EnvToken = "UPSTASH_VECTOR_REST_TOKEN"
)

// Config holds configuration for an Index client.
type Config struct {
	// URL is the REST endpoint of the index.
	URL string

	// Token authorizes requests.
	Token string

	// Retries is the number of extra attempts after a transport failure.
	Retries int

	// RetryInterval is the delay between attempts.
	RetryInterval time.Duration

	// MaxRetryInterval enables doubling backoff up to this cap when set.
	MaxRetryInterval time.Duration

	// Timeout bounds each HTTP exchange.
	Timeout time.Duration

	// RateLimit caps requests per second. Zero disables it.
	RateLimit float64

	// DisableTelemetry omits the telemetry headers.
	DisableTelemetry bool
}

// Index is a handle to a remote vector index. It is safe for concurrent use;
// sessions it creates are not.
type Index struct {
	exec   transport.Executor
	logger *slog.Logger
}

// New creates an Index that talks to c.URL over HTTP.
func New(c Config, logger *slog.Logger) (*Index, error) {
	exec, err := transport.NewHTTPExecutor(transport.Config{
		URL:              c.URL,
		Token:            c.Token,
		Retries:          c.Retries,
		RetryInterval:    c.RetryInterval,
		MaxRetryInterval: c.MaxRetryInterval,
		Timeout:          c.Timeout,
		RateLimit:        c.RateLimit,
		DisableTelemetry: c.DisableTelemetry,
	}, logger)
	if err != nil {
		return nil, err
	}

	return NewWithExecutor(exec, logger), nil
}

// FromEnv creates an Index from UPSTASH_VECTOR_REST_URL and
// UPSTASH_VECTOR_REST_TOKEN with the default retry policy.
func FromEnv(logger *slog.Logger) (*Index, error) {
	url := os.Getenv(EnvURL)
	token := os.Getenv(EnvToken)
	if url == "" || token == "" {
		return nil, errors.New(EnvURL + " and " + EnvToken + " must be set")
	}

	return New(Config{
		URL:           url,
		Token:         token,
		Retries:       transport.DefaultRetries,
		RetryInterval: transport.DefaultRetryInterval,
		Timeout:       transport.DefaultTimeout,
	}, logger)
}

// NewWithExecutor creates an Index over an existing executor.
func NewWithExecutor(exec transport.Executor, logger *slog.Logger) *Index {
	return &Index{exec: exec, logger: logger}
}
