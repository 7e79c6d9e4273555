// Package source opens the byte stream ssecodec decodes: standard input, a
// local file, or an HTTP(S) event stream.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/papercomputeco/ssecodec/pkg/logger"
)

// Stdin is the target that reads from standard input.
const Stdin = "-"

// ErrUnexpectedStatus is returned when an HTTP source answers with a non-2xx
// status.
var ErrUnexpectedStatus = errors.New("unexpected status")

type options struct {
	client         *http.Client
	headers        http.Header
	lastEventID    string
	userAgent      string
	connectTimeout time.Duration
	stdin          io.Reader
	logger         *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithHTTPClient sets the client used for HTTP targets.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithHeader adds a request header for HTTP targets.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers.Add(key, value)
	}
}

// WithLastEventID sends id as the Last-Event-ID header so the server can
// resume the stream.
func WithLastEventID(id string) Option {
	return func(o *options) {
		o.lastEventID = id
	}
}

// WithUserAgent sets the User-Agent header for HTTP targets.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithConnectTimeout bounds the time to receive response headers. The body
// itself is not subject to the timeout since event streams are long lived.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = d
	}
}

// WithStdin replaces os.Stdin for the "-" target.
func WithStdin(r io.Reader) Option {
	return func(o *options) {
		o.stdin = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open returns a reader over target. The caller must close it.
//
//   - "-" reads standard input; closing it does not close os.Stdin.
//   - An http:// or https:// URL issues a single GET for an event stream.
//   - Anything else is opened as a file path.
func Open(ctx context.Context, target string, opts ...Option) (io.ReadCloser, error) {
	o := &options{
		headers: http.Header{},
		stdin:   os.Stdin,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case target == Stdin:
		o.logger.Debug("reading stream from stdin")
		return io.NopCloser(o.stdin), nil
	case IsURL(target):
		return openHTTP(ctx, target, o)
	default:
		o.logger.Debug("reading stream from file", "path", target)
		f, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", target, err)
		}
		return f, nil
	}
}

// IsURL reports whether target names an HTTP(S) stream.
func IsURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func openHTTP(ctx context.Context, target string, o *options) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", target, err)
	}

	for k, vs := range o.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if o.lastEventID != "" {
		req.Header.Set("Last-Event-ID", o.lastEventID)
	}
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}

	client := o.client
	if client == nil {
		client = newClient(o.connectTimeout)
	}

	o.logger.Debug("opening event stream",
		"url", target,
		"last_event_id", o.lastEventID,
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("requesting %s: %w: %s", target, ErrUnexpectedStatus, resp.Status)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "text/event-stream") {
		o.logger.Warn("stream has unexpected content type", "url", target, "content_type", ct)
	}

	return resp.Body, nil
}

func newClient(connectTimeout time.Duration) *http.Client {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok || connectTimeout <= 0 {
		return &http.Client{}
	}

	t := transport.Clone()
	t.ResponseHeaderTimeout = connectTimeout
	t.TLSHandshakeTimeout = connectTimeout
	return &http.Client{Transport: t}
}
