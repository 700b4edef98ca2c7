package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmode/agentprobe/internal/common/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      "error",
		Format:     "console",
		OutputPath: "stderr",
	})
	require.NoError(t, err)
	return log
}

// clientForServer builds a Client pointed at an httptest server.
func clientForServer(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	return clientForServerWithTimeout(t, ts, 0)
}

func clientForServerWithTimeout(t *testing.T, ts *httptest.Server, timeout time.Duration) *Client {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return NewClient(Config{Host: u.Hostname(), Port: port, Timeout: timeout}, newTestLogger(t))
}

// refusedClient builds a Client pointed at a port nothing listens on.
func refusedClient(t *testing.T) *Client {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return NewClient(Config{Host: "127.0.0.1", Port: port}, newTestLogger(t))
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults target the local service", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 3912, cfg.Port)
		assert.Zero(t, cfg.Timeout)
		assert.Equal(t, "http://localhost:3912", cfg.BaseURL())
	})

	t.Run("validates port range", func(t *testing.T) {
		for _, port := range []int{0, -1, 65536, 100000} {
			cfg := Config{Host: "localhost", Port: port}
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "between 1 and 65535")
		}
		assert.NoError(t, Config{Host: "localhost", Port: 1}.Validate())
		assert.NoError(t, Config{Host: "localhost", Port: 65535}.Validate())
	})

	t.Run("rejects empty host", func(t *testing.T) {
		err := Config{Port: 3912}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "host")
	})

	t.Run("rejects negative timeout", func(t *testing.T) {
		err := Config{Host: "localhost", Port: 3912, Timeout: -time.Second}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestRequestBodyDecoding(t *testing.T) {
	t.Run("decodes a JSON object body", func(t *testing.T) {
		ts := httptest.NewServer(jsonHandler(http.StatusOK, `{"adapter":"claude","healthy":true}`))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/v1/agent/health", nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Status)
		assert.Equal(t, BodyJSON, rec.Body.Kind)
		obj, ok := rec.Body.Object()
		require.True(t, ok)
		assert.Equal(t, "claude", obj["adapter"])
		assert.Equal(t, true, obj["healthy"])
	})

	t.Run("passes an invalid JSON body through raw", func(t *testing.T) {
		ts := httptest.NewServer(jsonHandler(http.StatusOK, `oops{{not json`))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, BodyRaw, rec.Body.Kind)
		assert.Equal(t, `oops{{not json`, rec.Body.Raw)
	})

	t.Run("surfaces an empty body as the empty string", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, BodyRaw, rec.Body.Kind)
		assert.Equal(t, "", rec.Body.Raw)
	})

	t.Run("a single whitespace byte is raw, not an error", func(t *testing.T) {
		ts := httptest.NewServer(jsonHandler(http.StatusOK, " "))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, BodyRaw, rec.Body.Kind)
		assert.Equal(t, " ", rec.Body.Raw)
	})

	t.Run("reads a 10 MiB body to completion", func(t *testing.T) {
		const size = 10 * 1024 * 1024
		big := strings.Repeat("a", size)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, big)
		}))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, BodyRaw, rec.Body.Kind)
		assert.Len(t, rec.Body.Raw, size)
	})

	t.Run("object accessor rejects non-object JSON", func(t *testing.T) {
		ts := httptest.NewServer(jsonHandler(http.StatusOK, `[1,2,3]`))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, BodyJSON, rec.Body.Kind)
		_, ok := rec.Body.Object()
		assert.False(t, ok)
	})
}

func TestRequestStatusHandling(t *testing.T) {
	t.Run("4xx and 5xx are records, not errors", func(t *testing.T) {
		for _, status := range []int{400, 404, 500, 503} {
			ts := httptest.NewServer(jsonHandler(status, `{"error":"nope"}`))

			rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

			require.NoError(t, err, "status %d must not be a transport error", status)
			assert.Equal(t, status, rec.Status)
			ts.Close()
		}
	})

	t.Run("redirects are returned, not followed", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/elsewhere" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.Header().Set("Location", "/elsewhere")
			w.WriteHeader(http.StatusFound)
		}))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Status)
		assert.Equal(t, "/elsewhere", rec.Headers.Get("Location"))
	})
}

func TestRequestHeaders(t *testing.T) {
	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Adapter-Kind", "claude")
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		rec, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", nil)

		require.NoError(t, err)
		assert.Equal(t, "claude", rec.Headers.Get("x-adapter-kind"))
		assert.Equal(t, "claude", rec.Headers.Get("X-ADAPTER-KIND"))
	})

	t.Run("content type is sent only with a body", func(t *testing.T) {
		var seenContentType string
		var seenBody string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenContentType = r.Header.Get("Content-Type")
			data, _ := io.ReadAll(r.Body)
			seenBody = string(data)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()
		c := clientForServer(t, ts)

		_, err := c.Request(context.Background(), http.MethodPost, "/", map[string]string{"message": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "application/json", seenContentType)
		assert.JSONEq(t, `{"message":"hi"}`, seenBody)

		_, err = c.Request(context.Background(), http.MethodGet, "/", nil)
		require.NoError(t, err)
		assert.Empty(t, seenContentType)
		assert.Empty(t, seenBody)
	})

	t.Run("a body on GET is permitted", func(t *testing.T) {
		var seenBody string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			seenBody = string(data)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		_, err := clientForServer(t, ts).Request(context.Background(), http.MethodGet, "/", map[string]int{"n": 1})

		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, seenBody)
	})
}

func TestRequestTransportErrors(t *testing.T) {
	t.Run("connection refused surfaces as an error", func(t *testing.T) {
		c := refusedClient(t)

		rec, err := c.Request(context.Background(), http.MethodGet, "/v1/agent/health", nil)

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("timeout aborts the in-flight request", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer ts.Close()
		c := clientForServerWithTimeout(t, ts, 20*time.Millisecond)

		start := time.Now()
		rec, err := c.Request(context.Background(), http.MethodGet, "/", nil)

		require.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "Client.Timeout exceeded")
		assert.Less(t, time.Since(start), 400*time.Millisecond)
	})
}

func TestRequestValidation(t *testing.T) {
	c := NewClient(DefaultConfig(), newTestLogger(t))

	t.Run("rejects unsupported methods", func(t *testing.T) {
		_, err := c.Request(context.Background(), "PATCH", "/v1/agent/health", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported method")
	})

	t.Run("rejects paths without a leading slash", func(t *testing.T) {
		_, err := c.Request(context.Background(), http.MethodGet, "v1/agent/health", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must begin with /")
	})
}

func TestRequestIdempotentReads(t *testing.T) {
	t.Run("successive GETs produce equivalent records", func(t *testing.T) {
		ts := httptest.NewServer(jsonHandler(http.StatusOK, `{"sessions":[]}`))
		defer ts.Close()
		c := clientForServer(t, ts)

		first, err := c.Request(context.Background(), http.MethodGet, "/v1/agent/sessions", nil)
		require.NoError(t, err)
		second, err := c.Request(context.Background(), http.MethodGet, "/v1/agent/sessions", nil)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.Body, second.Body)
	})
}
