// Package probe implements the smoke-test probes for the Agent Mode HTTP surface.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agentmode/agentprobe/internal/common/logger"
	"github.com/agentmode/agentprobe/internal/tracing"
)

// Defaults for the Agent Mode endpoint.
const (
	DefaultHost = "localhost"
	DefaultPort = 3912
)

// Config identifies the Agent Mode endpoint under test. It is constructed
// once by the driver and passed by value; probes never reach for globals.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration // per-request; zero means no timeout
}

// DefaultConfig returns the endpoint configuration for a local default install.
func DefaultConfig() Config {
	return Config{Host: DefaultHost, Port: DefaultPort}
}

// Validate checks the configuration for values no endpoint can have.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// BaseURL returns the plain-HTTP base URL for the endpoint.
func (c Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// BodyKind discriminates the representations of a response body.
type BodyKind int

const (
	// BodyRaw carries the body as the raw string. Empty bodies and bodies
	// that fail JSON decoding both land here.
	BodyRaw BodyKind = iota
	// BodyJSON carries the body as a decoded JSON value.
	BodyJSON
)

// Body is the decoded payload of a response, a tagged variant over
// {JSON value, raw string}. Exactly one representation is populated.
type Body struct {
	Kind BodyKind
	JSON any    // set when Kind == BodyJSON
	Raw  string // set when Kind == BodyRaw; an empty body yields ""
}

// Object returns the body as a JSON object, if that is what it decoded to.
func (b Body) Object() (map[string]any, bool) {
	if b.Kind != BodyJSON {
		return nil, false
	}
	obj, ok := b.JSON.(map[string]any)
	return obj, ok
}

// ResponseRecord is the verbatim outcome of one request-response exchange.
// Status carries the server's code unchanged, 4xx and 5xx included.
type ResponseRecord struct {
	Status  int
	Body    Body
	Headers http.Header // lookups via Get are case-insensitive
}

// Client issues single HTTP requests to the Agent Mode service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a client for the configured endpoint. Keep-alives are
// disabled so each exchange uses one connection, released when the body has
// been read; redirects are returned to the caller rather than followed.
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: log.WithFields(zap.String("component", "probe-client")),
	}
}

// BaseURL returns the base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request issues exactly one HTTP request and returns the server's response
// verbatim. A non-2xx status is an ordinary record, not an error; a non-nil
// error means the exchange itself failed (refused connection, DNS failure,
// timeout, connection closed mid-read). The response body is read to
// completion and the connection released on every path.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*ResponseRecord, error) {
	if err := checkMethod(method); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path must begin with /, got %q", path)
	}

	// A body is permitted on any verb, GET included; the server decides.
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	ctx, span := tracing.TraceHTTPRequest(ctx, method, path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.TraceHTTPResponse(span, 0, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readResponseBody(resp)
	if err != nil {
		tracing.TraceHTTPResponse(span, resp.StatusCode, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	tracing.TraceHTTPResponse(span, resp.StatusCode, nil)

	c.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
	)

	return &ResponseRecord{
		Status:  resp.StatusCode,
		Body:    decodeBody(respBody),
		Headers: resp.Header.Clone(),
	}, nil
}

func checkMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return nil
	}
	return fmt.Errorf("unsupported method %q", method)
}

// readResponseBody reads and returns the full response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBody turns raw body bytes into the tagged Body variant. An empty
// body is the raw empty string, never null; undecodable bytes pass through
// raw so a malformed server response surfaces as an assertion failure
// instead of a client error.
func decodeBody(data []byte) Body {
	if len(data) == 0 {
		return Body{Kind: BodyRaw, Raw: ""}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Body{Kind: BodyRaw, Raw: string(data)}
	}
	return Body{Kind: BodyJSON, JSON: v}
}
