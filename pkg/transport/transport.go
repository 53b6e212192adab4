// Package transport sends JSON requests to the vector REST API and decodes
// the {result} / {error} response envelope.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/papercomputeco/upvector/pkg/utils"
	"github.com/papercomputeco/upvector/pkg/vector"
)

const (
	// DefaultRetries is the number of extra attempts after a transport failure.
	DefaultRetries = 3

	// DefaultRetryInterval is the delay before the first retry.
	DefaultRetryInterval = time.Second

	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 60 * time.Second
)

// Executor performs one logical request against the service. payload is
// marshaled as the JSON body (nil sends no body) and the `result` field of
// the response is decoded into out (nil discards it).
type Executor interface {
	Execute(ctx context.Context, path string, payload, out any) error
}

// Config holds configuration for the HTTP executor.
type Config struct {
	// URL is the REST endpoint of the index, e.g. "https://xyz.upstash.io".
	URL string

	// Token is sent as a bearer token.
	Token string

	// Retries is the number of additional attempts made when the HTTP
	// exchange itself fails. Negative values are treated as zero.
	Retries int

	// RetryInterval is the delay between attempts.
	RetryInterval time.Duration

	// MaxRetryInterval enables exponential backoff: the delay doubles after
	// every failed attempt up to this cap. Zero keeps the delay fixed.
	MaxRetryInterval time.Duration

	// Timeout bounds each HTTP exchange. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RateLimit caps outgoing requests per second. Zero disables it.
	RateLimit float64

	// DisableTelemetry omits the Upstash-Telemetry-* headers.
	DisableTelemetry bool

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// HTTPExecutor implements Executor over net/http.
type HTTPExecutor struct {
	baseURL          string
	headers          http.Header
	retries          int
	retryInterval    time.Duration
	maxRetryInterval time.Duration
	limiter          *rate.Limiter
	httpClient       *http.Client
	logger           *slog.Logger
}

// envelope is the response body shape shared by every endpoint.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// NewHTTPExecutor creates an executor for the index at c.URL.
func NewHTTPExecutor(c Config, logger *slog.Logger) (*HTTPExecutor, error) {
	if c.URL == "" {
		return nil, errors.New("index URL is required")
	}
	if c.Token == "" {
		return nil, errors.New("index token is required")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if c.RateLimit > 0 {
		burst := max(int(c.RateLimit), 1)
		limiter = rate.NewLimiter(rate.Limit(c.RateLimit), burst)
	}

	return &HTTPExecutor{
		baseURL:          strings.TrimRight(c.URL, "/"),
		headers:          Headers(c.Token, !c.DisableTelemetry),
		retries:          max(c.Retries, 0),
		retryInterval:    c.RetryInterval,
		maxRetryInterval: c.MaxRetryInterval,
		limiter:          limiter,
		httpClient:       httpClient,
		logger:           logger,
	}, nil
}

// Headers returns the request headers for token. Telemetry headers are
// included when telemetry is true.
func Headers(token string, telemetry bool) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")
	if !telemetry {
		return h
	}

	h.Set("Upstash-Telemetry-Sdk", "upvector-go@v"+strings.TrimPrefix(utils.Version, "v"))
	h.Set("Upstash-Telemetry-Runtime", "go@"+runtime.Version())
	h.Set("Upstash-Telemetry-Platform", platform())
	return h
}

func platform() string {
	switch {
	case os.Getenv("VERCEL") != "":
		return "vercel"
	case os.Getenv("AWS_REGION") != "":
		return "aws"
	default:
		return "unknown"
	}
}

// Execute implements Executor.
func (e *HTTPExecutor) Execute(ctx context.Context, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", path, err)
		}
	}

	resp, err := e.send(ctx, path, body)
	if err != nil {
		return err
	}

	return decode(resp, out)
}

type response struct {
	status int
	body   []byte
}

// send performs the exchange, retrying only when no response was obtained.
func (e *HTTPExecutor) send(ctx context.Context, path string, body []byte) (*response, error) {
	url := e.baseURL + path
	delay := e.retryInterval
	attempts := e.retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, vector.NewTransportError(attempt, err)
			}
		}

		e.logger.Debug("sending request", "path", path, "attempt", attempt)
		resp, err := e.do(ctx, url, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, vector.NewTransportError(attempt, lastErr)
		}
		if attempt == attempts {
			break
		}

		e.logger.Warn("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, vector.NewTransportError(attempt, ctx.Err())
		case <-time.After(delay):
		}

		if e.maxRetryInterval > 0 {
			delay = min(delay*2, e.maxRetryInterval)
		}
	}

	return nil, vector.NewTransportError(attempts, lastErr)
}

func (e *HTTPExecutor) do(ctx context.Context, url string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range e.headers {
		req.Header[k] = v
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &response{status: resp.StatusCode, body: data}, nil
}

func decode(resp *response, out any) error {
	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return &vector.ApplicationError{
			Message:    fmt.Sprintf("unexpected response body: %s", utils.Truncate(string(resp.body), 200)),
			StatusCode: resp.status,
		}
	}

	if env.Error != nil {
		return &vector.ApplicationError{Message: *env.Error, StatusCode: resp.status}
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}
