package internal

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/steer/pkg/logger"
)

// Params carries the named parameters of a dispatch. Values are free-form;
// the transport adapter fills it from query/form data, nested dispatches may
// pass richer values directly.
type Params map[string]any

// String returns the parameter as a string, or "" when absent or not a string.
func (p Params) String(name string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return ""
}

// Has reports whether the named parameter is present.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Context provides request access, the buffered output sink, and
// request-scoped storage to actions and filters. One Context spans a whole
// dispatch including nested forwards; output accumulates in order and is
// delivered once by the transport adapter.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	// Filters and actions normally write through the buffered sink instead.
	Response() http.ResponseWriter

	// IsPost reports whether the request is an HTTP POST.
	IsPost() bool

	// IsAjax reports whether the request carries the XMLHttpRequest marker.
	IsAjax() bool

	// UserID returns the authenticated user's ID supplied by the host,
	// or "" for a guest.
	UserID() string

	// IsAuthenticated reports whether a user is associated with the request.
	IsAuthenticated() bool

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	// Write appends to the dispatch output buffer.
	Write(p []byte) (int, error)

	// WriteString appends a string to the dispatch output buffer.
	WriteString(s string) (int, error)

	// Output returns the buffered output accumulated so far.
	Output() []byte

	// OutputLen returns the current length of the output buffer.
	OutputLen() int

	// Written reports whether buffered output was already delivered.
	Written() bool

	// Set stores a request-scoped value.
	Set(key, value any)

	// Get retrieves a request-scoped value, or nil if not set.
	Get(key any) any
}

// requestContext is the concrete Context used by the dispatch adapter.
type requestContext struct {
	w        http.ResponseWriter
	r        *http.Request
	logger   *slog.Logger
	values   map[any]any
	userID   func(*http.Request) string
	buf      bytes.Buffer
	mu       sync.RWMutex
	written  bool
	userOnce sync.Once
	user     string
}

// ContextOption configures a request context.
type ContextOption func(*requestContext)

// WithContextLogger sets the request-scoped logger.
func WithContextLogger(l *slog.Logger) ContextOption {
	return func(c *requestContext) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIdentity supplies the host's user-identity lookup. The result is
// resolved lazily on first UserID call and cached for the request.
func WithIdentity(fn func(*http.Request) string) ContextOption {
	return func(c *requestContext) {
		c.userID = fn
	}
}

// NewContext creates a dispatch Context over the given response writer and
// request. The zero configuration uses a discard logger and treats every
// request as a guest.
func NewContext(w http.ResponseWriter, r *http.Request, opts ...ContextOption) Context {
	c := &requestContext{
		w:      w,
		r:      r,
		logger: logger.NewNope(),
		values: make(map[any]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *requestContext) Request() *http.Request        { return c.r }
func (c *requestContext) Response() http.ResponseWriter { return c.w }
func (c *requestContext) Logger() *slog.Logger          { return c.logger }

func (c *requestContext) IsPost() bool {
	return c.r.Method == http.MethodPost
}

func (c *requestContext) IsAjax() bool {
	return c.r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func (c *requestContext) UserID() string {
	c.userOnce.Do(func() {
		if c.userID != nil {
			c.user = c.userID(c.r)
		}
	})
	return c.user
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *requestContext) WriteString(s string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.WriteString(s)
}

func (c *requestContext) Output() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Bytes()
}

func (c *requestContext) OutputLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Len()
}

func (c *requestContext) Written() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.written
}

// flush delivers the buffered output to the response writer exactly once.
// proc, when non-nil, gets a final pass over the output before delivery.
func (c *requestContext) flush(proc OutputProcessor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.written {
		return nil
	}
	c.written = true
	out := c.buf.Bytes()
	if proc != nil {
		var err error
		if out, err = proc.ProcessOutput(c, out); err != nil {
			return err
		}
	}
	if len(out) == 0 {
		return nil
	}
	_, err := c.w.Write(out)
	return err
}

func (c *requestContext) Set(key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *requestContext) Get(key any) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// context.Context delegation to the request's context.

func (c *requestContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *requestContext) Err() error                  { return c.r.Context().Err() }

func (c *requestContext) Value(key any) any {
	if v := c.Get(key); v != nil {
		return v
	}
	return c.r.Context().Value(key)
}

// OutputProcessor gets a final pass over the buffered dispatch output before
// it is delivered to the client. It is the seam for response middleware such
// as layout decoration or compression owned by the host.
type OutputProcessor interface {
	ProcessOutput(c Context, output []byte) ([]byte, error)
}

// OutputProcessorFunc adapts a function to the OutputProcessor interface.
type OutputProcessorFunc func(c Context, output []byte) ([]byte, error)

func (f OutputProcessorFunc) ProcessOutput(c Context, output []byte) ([]byte, error) {
	return f(c, output)
}
