package internal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/steer/pkg/logger"
)

// requestIDKey is the context key for the dispatch request ID.
type requestIDKey struct{}

// RequestIDHeader is the header carrying the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// dispatchConfig holds the transport-adapter wiring.
type dispatchConfig struct {
	logger       *slog.Logger
	identity     func(*http.Request) string
	processor    OutputProcessor
	errorHandler func(Context, error)
	requestID    func() string
}

// DispatchOption configures the transport adapter.
type DispatchOption func(*dispatchConfig)

// WithDispatchLogger sets the logger propagated into dispatch contexts.
func WithDispatchLogger(l *slog.Logger) DispatchOption {
	return func(cfg *dispatchConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithDispatchIdentity supplies the host's user-identity lookup consumed by
// access rules.
func WithDispatchIdentity(fn func(*http.Request) string) DispatchOption {
	return func(cfg *dispatchConfig) {
		cfg.identity = fn
	}
}

// WithOutputProcessor installs a response middleware pass applied to the
// buffered output before delivery.
func WithOutputProcessor(p OutputProcessor) DispatchOption {
	return func(cfg *dispatchConfig) {
		cfg.processor = p
	}
}

// WithDispatchErrorHandler replaces the default error rendering. The
// handler is responsible for writing a response.
func WithDispatchErrorHandler(fn func(Context, error)) DispatchOption {
	return func(cfg *dispatchConfig) {
		cfg.errorHandler = fn
	}
}

// WithRequestIDGenerator replaces the default UUID request-id generator.
func WithRequestIDGenerator(fn func() string) DispatchOption {
	return func(cfg *dispatchConfig) {
		cfg.requestID = fn
	}
}

// Mount wires a module tree onto a chi router: "/{controller}/{action}"
// and "/{controller}" dispatch on the root module's controllers, submodule
// paths get their own subrouters, and "/" runs the "site" controller's
// default action when one is registered. This is the narrow seam between
// the HTTP transport and Controller.Run; routing beyond it stays external.
func Mount(r chi.Router, root *Module, opts ...DispatchOption) {
	cfg := &dispatchConfig{
		logger:    logger.NewNope(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	mountModule(r, root, cfg)
}

func mountModule(r chi.Router, m *Module, cfg *dispatchConfig) {
	for id, child := range m.Submodules() {
		sub := chi.NewRouter()
		mountModule(sub, child, cfg)
		r.Mount("/"+id, sub)
	}

	// All methods dispatch; method policy belongs to the postOnly filter
	// and AccessRule.Verbs, not the router.
	r.HandleFunc("/{controller}/{action}", dispatchHandler(m, cfg))
	r.HandleFunc("/{controller}", dispatchHandler(m, cfg))
	if _, ok := m.Controller("site"); ok {
		r.HandleFunc("/", dispatchHandler(m, cfg))
	}
}

// dispatchHandler adapts one request into a controller dispatch: it builds
// the buffered context, resolves the controller, runs the action, and
// delivers the buffered output exactly once.
func dispatchHandler(m *Module, cfg *dispatchConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := req.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = cfg.requestID()
		}
		w.Header().Set(RequestIDHeader, reqID)

		c := NewContext(w, req,
			WithContextLogger(cfg.logger.With(slog.String("request_id", reqID))),
			WithIdentity(cfg.identity),
		)
		c.Set(requestIDKey{}, reqID)

		controllerID := chi.URLParam(req, "controller")
		if controllerID == "" {
			controllerID = "site"
		}
		actionID := chi.URLParam(req, "action")

		ctrl, ok := m.Controller(controllerID)
		if !ok {
			renderError(c, cfg, ErrNotFound("Unable to resolve the request \""+controllerID+"\"."))
			return
		}

		if err := ctrl.Run(c, actionID, queryParams(req)); err != nil {
			renderError(c, cfg, err)
			return
		}

		if err := c.(*requestContext).flush(cfg.processor); err != nil {
			cfg.logger.ErrorContext(c, "failed to deliver dispatch output",
				slog.Any("error", err))
		}
	}
}

// queryParams flattens query (and parsed form) values into dispatch
// parameters; the first value wins for repeated names.
func queryParams(req *http.Request) Params {
	params := make(Params)
	for name, values := range req.URL.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}
	if err := req.ParseForm(); err == nil {
		for name, values := range req.PostForm {
			if len(values) > 0 {
				params[name] = values[0]
			}
		}
	}
	return params
}

// renderError translates an unwound dispatch failure into a response. This
// is the single place where failures become HTTP: handler errors keep their
// status and message, configuration defects and everything else are logged
// and masked as a 500.
func renderError(c Context, cfg *dispatchConfig, err error) {
	if cfg.errorHandler != nil {
		cfg.errorHandler(c, err)
		return
	}

	if httpErr := AsHTTPError(err); httpErr != nil {
		if httpErr.Code >= http.StatusInternalServerError {
			cfg.logger.ErrorContext(c, "dispatch failed",
				slog.Int("status", httpErr.Code),
				slog.Any("error", err))
		}
		http.Error(c.Response(), httpErr.Message, httpErr.Code)
		return
	}

	cfg.logger.ErrorContext(c, "dispatch failed",
		slog.Bool("config_error", IsConfigError(err)),
		slog.Any("error", err))
	http.Error(c.Response(), StatusPhrase(http.StatusInternalServerError), http.StatusInternalServerError)
}

// GetRequestID extracts the request ID from a dispatch context.
// Returns an empty string when none was assigned.
func GetRequestID(c Context) string {
	if v, ok := c.Get(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a logger.ContextExtractor adding "request_id"
// to log records emitted with the dispatch context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
