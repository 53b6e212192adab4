package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	upvectorlogger "github.com/papercomputeco/upvector/pkg/logger"
	"github.com/papercomputeco/upvector/pkg/transport"
	"github.com/papercomputeco/upvector/pkg/vector"
)

// dropConnection closes the underlying connection without writing a
// response, which surfaces as a transport failure on the client.
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	Expect(ok).To(BeTrue())
	conn, _, err := hj.Hijack()
	Expect(err).NotTo(HaveOccurred())
	conn.Close()
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"result": result})
}

var _ = Describe("HTTPExecutor", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = upvectorlogger.Nop()
	})

	Describe("NewHTTPExecutor", func() {
		It("requires a URL", func() {
			_, err := transport.NewHTTPExecutor(transport.Config{Token: "t"}, logger)
			Expect(err).To(MatchError(ContainSubstring("URL is required")))
		})

		It("requires a token", func() {
			_, err := transport.NewHTTPExecutor(transport.Config{URL: "http://localhost"}, logger)
			Expect(err).To(MatchError(ContainSubstring("token is required")))
		})
	})

	Describe("Execute", func() {
		It("posts JSON with auth and telemetry headers and decodes the result", func() {
			var got *http.Request
			var body map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				writeResult(w, []string{"a", "b"})
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{URL: server.URL + "/", Token: "secret"}, logger)
			Expect(err).NotTo(HaveOccurred())

			var out []string
			err = exec.Execute(context.Background(), "/query/ns", map[string]any{"topK": 2}, &out)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]string{"a", "b"}))

			Expect(got.Method).To(Equal(http.MethodPost))
			Expect(got.URL.Path).To(Equal("/query/ns"))
			Expect(got.Header.Get("Authorization")).To(Equal("Bearer secret"))
			Expect(got.Header.Get("Upstash-Telemetry-Sdk")).To(HavePrefix("upvector-go@v"))
			Expect(got.Header.Get("Upstash-Telemetry-Runtime")).To(HavePrefix("go@"))
			Expect(got.Header.Get("Upstash-Telemetry-Platform")).NotTo(BeEmpty())
			Expect(body).To(HaveKeyWithValue("topK", BeNumerically("==", 2)))
		})

		It("omits telemetry headers when disabled", func() {
			h := transport.Headers("tok", false)
			Expect(h.Get("Authorization")).To(Equal("Bearer tok"))
			Expect(h.Get("Upstash-Telemetry-Sdk")).To(BeEmpty())
		})

		It("surfaces service errors as application errors without retrying", func() {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]any{"error": "Invalid dimension", "status": 400})
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{
				URL:           server.URL,
				Token:         "t",
				Retries:       3,
				RetryInterval: time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			err = exec.Execute(context.Background(), "/upsert", []any{}, nil)
			Expect(vector.IsApplicationError(err)).To(BeTrue())

			var appErr *vector.ApplicationError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Message).To(Equal("Invalid dimension"))
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(attempts.Load()).To(Equal(int32(1)))
		})

		It("treats a non-JSON body as an application error carrying the status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{URL: server.URL, Token: "t"}, logger)
			Expect(err).NotTo(HaveOccurred())

			err = exec.Execute(context.Background(), "/info", nil, nil)
			var appErr *vector.ApplicationError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
		})

		It("retries transport failures and succeeds once the server answers", func() {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if attempts.Add(1) <= 2 {
					dropConnection(w)
					return
				}
				writeResult(w, "Success")
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{
				URL:              server.URL,
				Token:            "t",
				Retries:          3,
				RetryInterval:    5 * time.Millisecond,
				MaxRetryInterval: 20 * time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			var status string
			Expect(exec.Execute(context.Background(), "/reset", nil, &status)).To(Succeed())
			Expect(status).To(Equal("Success"))
			Expect(attempts.Load()).To(Equal(int32(3)))
		})

		It("gives up after the configured retries with a transport error", func() {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				dropConnection(w)
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{
				URL:           server.URL,
				Token:         "t",
				Retries:       2,
				RetryInterval: time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			err = exec.Execute(context.Background(), "/reset", nil, nil)
			Expect(vector.IsTransportError(err)).To(BeTrue())

			var tErr *vector.TransportError
			Expect(errors.As(err, &tErr)).To(BeTrue())
			Expect(tErr.Attempts).To(Equal(3))
			Expect(attempts.Load()).To(Equal(int32(3)))
		})

		It("stops retrying when the context is cancelled", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				dropConnection(w)
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{
				URL:           server.URL,
				Token:         "t",
				Retries:       10,
				RetryInterval: time.Hour,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err = exec.Execute(ctx, "/reset", nil, nil)
			Expect(vector.IsTransportError(err)).To(BeTrue())
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("spaces requests with the rate limiter", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeResult(w, "ok")
			}))
			defer server.Close()

			exec, err := transport.NewHTTPExecutor(transport.Config{
				URL:       server.URL,
				Token:     "t",
				RateLimit: 20,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			start := time.Now()
			for range 22 {
				Expect(exec.Execute(context.Background(), "/info", nil, nil)).To(Succeed())
			}
			Expect(time.Since(start)).To(BeNumerically(">=", 80*time.Millisecond))
		})
	})
})
