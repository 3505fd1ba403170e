// Package http opens remote containers through HTTP range requests.
package http //nolint:revive // intentional naming for domain clarity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrRangeUnsupported is returned when the server ignores Range headers.
	ErrRangeUnsupported = errors.New("http: range requests not supported")

	// ErrRemoteChanged is returned when the remote content no longer matches
	// the ETag or Last-Modified time seen when the source was opened.
	ErrRemoteChanged = errors.New("http: remote content changed")
)

// DefaultTimeout bounds each range request.
const DefaultTimeout = 30 * time.Second

// Source reads a remote container with one range request per ReadAt.
// It satisfies idcl.ByteSource.
type Source struct {
	ctx     context.Context
	url     string
	client  *nethttp.Client
	headers nethttp.Header
	timeout time.Duration
	logger  *slog.Logger

	size         int64
	etag         string
	lastModified string
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeader sets a header on each request, such as Authorization.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.timeout = d
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource probes url with a one-byte range request to learn its size,
// ETag, and Last-Modified time. Later reads are conditional on them and fail
// with ErrRemoteChanged if the content is replaced. They use ctx, so
// canceling it aborts them.
func NewSource(ctx context.Context, url string, opts ...Option) (*Source, error) {
	s := &Source{
		ctx:     ctx,
		url:     url,
		client:  nethttp.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	if err := s.probe(); err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	s.logger.Debug("remote source opened", "url", url, "size", s.size, "etag", s.etag)
	return s, nil
}

// Size returns the size of the remote content.
func (s *Source) Size() int64 {
	return s.size
}

// SourceID identifies the remote content by URL and, when the server sends
// one, its ETag.
func (s *Source) SourceID() string {
	if s.etag != "" {
		return "url:" + s.url + "|etag:" + s.etag
	}
	return "url:" + s.url + "|size:" + strconv.FormatInt(s.size, 10)
}

// ReadAt implements io.ReaderAt. Reads past the end return the available
// bytes and io.EOF.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}
	want := min(int64(len(p)), s.size-off)

	var n int
	err := s.do(off, off+want-1, func(resp *nethttp.Response) error {
		if resp.StatusCode != nethttp.StatusPartialContent {
			return statusError(resp)
		}
		var err error
		n, err = io.ReadFull(resp.Body, p[:want])
		return err
	})
	if err != nil {
		return n, fmt.Errorf("read %d bytes at %d: %w", want, off, err)
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Source) probe() error {
	return s.do(0, 0, func(resp *nethttp.Response) error {
		if resp.StatusCode != nethttp.StatusPartialContent {
			return statusError(resp)
		}
		size, err := parseContentRange(resp.Header.Get("Content-Range"))
		if err != nil {
			return err
		}
		s.size = size
		s.etag = resp.Header.Get("ETag")
		s.lastModified = resp.Header.Get("Last-Modified")
		return nil
	})
}

// do issues a GET for bytes [first, last] and passes the response to fn.
// The body is drained and closed afterwards for connection reuse.
func (s *Source) do(first, last int64, fn func(*nethttp.Response) error) error {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, s.url, nethttp.NoBody)
	if err != nil {
		return err
	}
	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", first, last))
	// Weak ETags never satisfy If-Match.
	switch {
	case s.etag != "" && !strings.HasPrefix(s.etag, "W/"):
		req.Header.Set("If-Match", s.etag)
	case s.lastModified != "":
		req.Header.Set("If-Unmodified-Since", s.lastModified)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain for connection reuse
		_ = resp.Body.Close()
	}()
	s.logger.Debug("range request", "url", s.url, "first", first, "last", last,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return fn(resp)
}

func statusError(resp *nethttp.Response) error {
	switch resp.StatusCode {
	case nethttp.StatusOK:
		return ErrRangeUnsupported
	case nethttp.StatusPreconditionFailed:
		return ErrRemoteChanged
	}
	return fmt.Errorf("range request failed: %s", resp.Status)
}

// parseContentRange returns the total size from "bytes first-last/size".
func parseContentRange(value string) (int64, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "bytes ")
	if !ok {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	_, total, ok := strings.Cut(rest, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	return size, nil
}
