package httpspec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// ErrTransportError is the executor adapter's transport-level failure
// (spec.md §4.3). The adapter's other failure mode, MissingMethod, reuses
// ErrMissingMethod from parser.go: since parsing already rejects
// unrecognized verbs eagerly (see DESIGN.md's Open Question decision), a
// Request reaching the executor with an empty Method can only happen if a
// caller builds one by hand rather than through the parser.
var ErrTransportError = errors.New("transport error")

// Executor translates a Request into a transport call and normalizes the
// result into a Response. It owns the underlying *http.Client so that
// connection pooling and TLS state are not shared across workers (spec.md
// §5: "each worker owns its own HTTP client instance").
//
// Grounded on the teacher's Client.executeRequest / _populateResponseDetails
// (client.go), trimmed of variable substitution, cookie jars, and TLS
// inspection, and extended with automatic response decompression.
type Executor struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewExecutor builds an Executor with the given per-request timeout. A
// non-positive timeout falls back to DefaultTimeout (spec.md §5, §12).
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		timeout:    timeout,
	}
}

// Execute sends req and returns its normalized Response, or an error
// wrapping ErrTransportError / ErrMissingMethod (spec.md §4.3).
func (e *Executor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.Method == "" {
		slog.Error("request reached executor with no method", "file", req.FilePath, "url", req.URL)
		return nil, fmt.Errorf("%s %s: %w", req.FilePath, req.URL, ErrMissingMethod)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		slog.Error("building request failed", "method", req.Method, "url", req.URL, "error", err)
		return nil, fmt.Errorf("%w: building request: %w", ErrTransportError, err)
	}
	applyRequestHeaders(httpReq, req.Headers)

	start := time.Now()
	httpResp, err := e.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Warn("request timed out", "method", req.Method, "url", req.URL, "timeout", e.timeout)
		} else {
			slog.Error("transport failure", "method", req.Method, "url", req.URL, "error", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransportError, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	return normalizeResponse(httpResp, duration)
}

func applyRequestHeaders(httpReq *http.Request, headers []Header) {
	for _, h := range headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
}

// normalizeResponse materializes the full response body, decompressing it
// if Content-Encoding names a supported scheme, and folds duplicate
// response headers last-value-wins into a lowercased-name map (spec.md §3,
// §4.3; Open Question "duplicate headers in responses" in DESIGN.md).
func normalizeResponse(httpResp *http.Response, duration time.Duration) (*Response, error) {
	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		slog.Error("reading response body failed", "error", err)
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransportError, err)
	}

	body, err := decompressBody(rawBody, httpResp.Header.Get("Content-Encoding"))
	if err != nil {
		slog.Error("decompressing response body failed", "content-encoding", httpResp.Header.Get("Content-Encoding"), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransportError, err)
	}

	statusCode := httpResp.StatusCode
	headers := make(map[string]string, len(httpResp.Header))
	for name, values := range httpResp.Header {
		if len(values) == 0 {
			continue
		}
		headers[lowerASCII(name)] = values[len(values)-1]
	}

	return &Response{
		StatusCode: &statusCode,
		Headers:    headers,
		Body:       body,
		Duration:   duration,
	}, nil
}

// decompressBody decompresses rawBody per contentEncoding. Unsupported or
// empty encodings pass the body through unchanged; this executor only
// needs to undo encodings the std transport does not already strip (the
// standard Transport auto-decodes gzip unless the caller sets a request
// header that disables it, so brotli is the encoding actually exercised
// here — grounded on WhileEndless-go-httptools/pkg/compression).
func decompressBody(rawBody []byte, contentEncoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "br", "brotli":
		reader := brotli.NewReader(bytes.NewReader(rawBody))
		decoded, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("decompressing brotli body: %w", err)
		}
		return decoded, nil
	default:
		return rawBody, nil
	}
}
