// Package emulator serves an in-memory vector index over the same REST
// protocol as the hosted service, for local development and tests.
package emulator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/upvector/pkg/embeddings"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// Index types.
const (
	IndexDense  = "DENSE"
	IndexSparse = "SPARSE"
	IndexHybrid = "HYBRID"
)

// DefaultMaxIdle is how long a resumable query survives without activity
// when the request does not say.
const DefaultMaxIdle = time.Hour

// Config is the emulator configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8085")
	ListenAddr string

	// Token, when set, must be presented as a bearer token.
	Token string

	// IndexType is DENSE, SPARSE or HYBRID. Defaults to DENSE.
	IndexType string

	// Dimension of dense vectors. Required for dense and hybrid indexes.
	Dimension int

	// Similarity is COSINE, EUCLIDEAN or DOT_PRODUCT. Defaults to COSINE.
	Similarity string

	// Embedder embeds data records and data queries. Without one the index
	// only accepts explicit vectors.
	Embedder embeddings.Embedder

	// EmbeddingModel is reported by the info endpoint.
	EmbeddingModel string

	// Now overrides the clock used for session expiry.
	Now func() time.Time
}

// Server is the emulated index.
type Server struct {
	config Config
	store  *store
	logger *slog.Logger
	app    *fiber.App

	// mounts are path prefixes served by foreign handlers. They bring their
	// own authentication.
	mounts []string
}

// errorResponse is the failure envelope.
type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// resultResponse is the success envelope.
type resultResponse struct {
	Result any `json:"result"`
}

// NewServer creates an emulator with an empty default namespace.
func NewServer(c Config, logger *slog.Logger) (*Server, error) {
	if c.IndexType == "" {
		c.IndexType = IndexDense
	}
	c.IndexType = strings.ToUpper(c.IndexType)
	switch c.IndexType {
	case IndexDense, IndexHybrid:
		if c.Dimension <= 0 {
			return nil, fmt.Errorf("dimension is required for %s indexes", strings.ToLower(c.IndexType))
		}
	case IndexSparse:
	default:
		return nil, fmt.Errorf("unsupported index type: %s", c.IndexType)
	}

	if c.Similarity == "" {
		c.Similarity = SimilarityCosine
	}
	switch c.Similarity {
	case SimilarityCosine, SimilarityEuclidean, SimilarityDotProduct:
	default:
		return nil, fmt.Errorf("unsupported similarity function: %s", c.Similarity)
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: c,
		store:  newStore(),
		logger: logger,
		app:    app,
	}

	app.Use(s.authenticate)

	app.Post(payload.PathUpsert+"/:namespace?", s.handleUpsert)
	app.Post(payload.PathUpsertData+"/:namespace?", s.handleUpsertData)
	app.Post(payload.PathQuery+"/:namespace?", s.handleQuery)
	app.Post(payload.PathQueryData+"/:namespace?", s.handleQueryData)
	app.Post(payload.PathResumableQuery+"/:namespace?", s.handleResumableQuery)
	app.Post(payload.PathResumableQueryData+"/:namespace?", s.handleResumableQueryData)
	app.Post(payload.PathResumableQueryNext, s.handleResumableQueryNext)
	app.Post(payload.PathResumableQueryEnd, s.handleResumableQueryEnd)
	app.Post(payload.PathFetch+"/:namespace?", s.handleFetch)
	app.Post(payload.PathDelete+"/:namespace?", s.handleDelete)
	app.Post(payload.PathRange+"/:namespace?", s.handleRange)
	app.Post(payload.PathUpdate+"/:namespace?", s.handleUpdate)
	app.Post(payload.PathInfo, s.handleInfo)
	app.Post(payload.PathReset+"/:namespace?", s.handleReset)
	app.Post(payload.PathListNamespaces, s.handleListNamespaces)
	app.Post(payload.PathDeleteNamespace+"/:namespace?", s.handleDeleteNamespace)

	return s, nil
}

// Mount serves h under prefix on the emulator's listener. Requests under
// prefix skip the emulator token check. Mount must be called before Run.
func (s *Server) Mount(prefix string, h http.Handler) {
	s.mounts = append(s.mounts, prefix)
	s.app.All(prefix, adaptor.HTTPHandler(h))
	s.app.All(prefix+"/*", adaptor.HTTPHandler(h))
}

// Handler returns the emulator as a net/http handler.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the emulator on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting emulator",
		"listen", s.config.ListenAddr,
		"index_type", s.config.IndexType,
		"dimension", s.config.Dimension,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the emulator.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) authenticate(c *fiber.Ctx) error {
	if s.config.Token == "" || s.mounted(c.Path()) {
		return c.Next()
	}
	if c.Get(fiber.HeaderAuthorization) != "Bearer "+s.config.Token {
		return writeError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.Next()
}

func (s *Server) mounted(path string) bool {
	for _, prefix := range s.mounts {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func writeResult(c *fiber.Ctx, result any) error {
	return c.JSON(resultResponse{Result: result})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(errorResponse{Error: msg, Status: status})
}

// apiError is a failure with an HTTP status, returned by the index logic
// and rendered by the handlers.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &apiError{status: fiber.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &apiError{status: fiber.StatusNotFound, msg: fmt.Sprintf(format, args...)}
}

func (s *Server) respond(c *fiber.Ctx, result any, err error) error {
	if err == nil {
		return writeResult(c, result)
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return writeError(c, apiErr.status, apiErr.msg)
	}

	s.logger.Error("emulator request failed", "path", c.Path(), "error", err)
	return writeError(c, fiber.StatusInternalServerError, err.Error())
}

// namespaceParam returns the decoded namespace segment, copied out of
// fiber's reusable request buffer.
func namespaceParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("namespace"))
	if err != nil {
		return "", badRequest("invalid namespace: %v", err)
	}
	return strings.Clone(name), nil
}

func decode(c *fiber.Ctx, v any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return badRequest("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// decodeOneOrMany accepts either a single JSON object or an array of them.
func decodeOneOrMany[T any](c *fiber.Ctx) ([]T, bool, error) {
	body := bytes.TrimSpace(c.Body())
	if len(body) > 0 && body[0] == '[' {
		var many []T
		if err := json.Unmarshal(body, &many); err != nil {
			return nil, true, badRequest("invalid request body: %v", err)
		}
		return many, true, nil
	}

	var one T
	if err := decode(c, &one); err != nil {
		return nil, false, err
	}
	return []T{one}, false, nil
}
