package steer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/steer/internal"
	"github.com/dmitrymomot/steer/pkg/logger"
)

// Type aliases - public API
type (
	// Controller owns action resolution and dispatch orchestration.
	Controller = internal.Controller

	// Context provides request access, the buffered output sink, and
	// request-scoped storage to actions and filters.
	Context = internal.Context

	// Params carries the named parameters of a dispatch.
	Params = internal.Params

	// Action is a unit of work bound to one controller and action id.
	Action = internal.Action

	// BaseAction carries the controller/action-id binding for action types
	// produced from configuration; embed it and implement Run.
	BaseAction = internal.BaseAction

	// ActionProvider exposes a nested action map resolved under a
	// "prefix." key of the outer action map.
	ActionProvider = internal.ActionProvider

	// HandlerFunc is the signature of an inline action handler.
	HandlerFunc = internal.HandlerFunc

	// Filter is a single pre/post interceptor around action execution.
	Filter = internal.Filter

	// FilterFunc adapts a function to the Filter interface.
	FilterFunc = internal.FilterFunc

	// PrePostFilter is the structured filter contract with PreFilter veto
	// and PostFilter unwind phases.
	PrePostFilter = internal.PrePostFilter

	// FilterChain is the ordered, forward-only sequence of filters
	// terminated by the action.
	FilterChain = internal.FilterChain

	// FilterSpec is the structured form of a filter declaration.
	FilterSpec = internal.FilterSpec

	// AccessRule is one entry of a controller's access policy.
	AccessRule = internal.AccessRule

	// AccessControlFilter enforces access rules and raises 403 on denial.
	AccessControlFilter = internal.AccessControlFilter

	// Module is an owning context for controllers and nested modules.
	Module = internal.Module

	// Registry maps type names to factories for class-based actions,
	// providers, and filters.
	Registry = internal.Registry

	// HTTPError is an HTTP-style dispatch failure.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ConfigError signals a defect in the declarative configuration.
	ConfigError = internal.ConfigError

	// Option configures a controller at construction.
	Option = internal.Option

	// ModuleOption configures a module.
	ModuleOption = internal.ModuleOption

	// ContextOption configures a dispatch context.
	ContextOption = internal.ContextOption

	// DispatchOption configures the chi transport adapter.
	DispatchOption = internal.DispatchOption

	// BeforeActionHook observes a dispatch before filters run; its vote
	// decides whether the action executes.
	BeforeActionHook = internal.BeforeActionHook

	// AfterActionHook observes a dispatch after the action completed.
	AfterActionHook = internal.AfterActionHook

	// TranslateFunc maps a message template and placeholders to text.
	TranslateFunc = internal.TranslateFunc

	// OutputProcessor gets a final pass over buffered output before
	// delivery.
	OutputProcessor = internal.OutputProcessor

	// OutputProcessorFunc adapts a function to OutputProcessor.
	OutputProcessorFunc = internal.OutputProcessorFunc
)

// DefaultAction is the action id substituted when a dispatch supplies none.
const DefaultAction = internal.DefaultAction

// User class markers usable in AccessRule.Users.
const (
	UsersAll           = internal.UsersAll
	UsersGuest         = internal.UsersGuest
	UsersAuthenticated = internal.UsersAuthenticated
)

// ErrInvalidParams is the sentinel an action returns when it cannot bind
// its required parameters. The dispatcher turns it into a 400 response.
var ErrInvalidParams = internal.ErrInvalidParams

// Constructors

// NewController creates a controller with the given immutable id.
//
// Example:
//
//	ctrl := steer.NewController("post",
//	    steer.WithDefaultAction("index"),
//	    steer.WithFilters(func() []any {
//	        return []any{"postOnly + delete"}
//	    }),
//	)
func NewController(id string, opts ...Option) *Controller {
	return internal.NewController(id, opts...)
}

// NewModule creates a module; an empty id denotes an application root.
func NewModule(id string, opts ...ModuleOption) *Module {
	return internal.NewModule(id, opts...)
}

// NewRegistry creates an empty action/filter type registry.
func NewRegistry() *Registry {
	return internal.NewRegistry()
}

// NewContext creates a dispatch Context over a response writer and request.
// Hosts bypassing the chi adapter use it to drive Controller.Run directly.
func NewContext(w http.ResponseWriter, r *http.Request, opts ...ContextOption) Context {
	return internal.NewContext(w, r, opts...)
}

// NewFilterChain builds a filter chain for one dispatch. Normally called
// by RunActionWithFilters; exposed for filters that need to re-chain.
func NewFilterChain(ctrl *Controller, action Action, specs []any) (*FilterChain, error) {
	return internal.NewFilterChain(ctrl, action, specs)
}

// Mount wires a module tree onto a chi router, dispatching
// "/{controller}/{action}" requests through Controller.Run.
//
// Example:
//
//	root := steer.NewModule("")
//	root.Register(postController)
//	root.Mount(steer.NewModule("admin").Register(userController))
//
//	r := chi.NewRouter()
//	steer.Mount(r, root, steer.WithDispatchLogger(log))
//	http.ListenAndServe(":8080", r)
func Mount(r chi.Router, root *Module, opts ...DispatchOption) {
	internal.Mount(r, root, opts...)
}

// BindParams decodes named dispatch parameters into a typed struct,
// yielding ErrInvalidParams when a value cannot be converted.
func BindParams(params Params, out any) error {
	return internal.BindParams(params, out)
}

// Error helpers

// NewHTTPError creates an HTTPError; an empty message defaults to the
// standard reason phrase for the code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithDetail sets an extended description on an HTTPError.
func WithDetail(detail string) HTTPErrorOption {
	return internal.WithDetail(detail)
}

// WithActionID tags an HTTPError with the action id it relates to.
func WithActionID(id string) HTTPErrorOption {
	return internal.WithActionID(id)
}

// WithError attaches an underlying error to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// AsHTTPError extracts the HTTPError from an error chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsConfigError reports whether err is a configuration defect.
func IsConfigError(err error) bool {
	return internal.IsConfigError(err)
}

// Controller options

// WithDefaultAction sets the action id used when a dispatch supplies none.
func WithDefaultAction(id string) Option {
	return internal.WithDefaultAction(id)
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithTranslator sets the translation lookup used by the error helpers.
func WithTranslator(fn TranslateFunc) Option {
	return internal.WithTranslator(fn)
}

// WithFilters declares the filter specifications, re-evaluated per
// dispatch in declaration order.
func WithFilters(fn func() []any) Option {
	return internal.WithFilters(fn)
}

// WithActions declares the action map, re-evaluated per dispatch.
func WithActions(fn func() map[string]any) Option {
	return internal.WithActions(fn)
}

// WithAccessRules declares the access policy consumed by the built-in
// accessControl filter.
func WithAccessRules(fn func() []AccessRule) Option {
	return internal.WithAccessRules(fn)
}

// WithActionRegistry shares an action-type registry across controllers.
func WithActionRegistry(r *Registry) Option {
	return internal.WithActionRegistry(r)
}

// WithFilterRegistry shares a filter-type registry across controllers.
func WithFilterRegistry(r *Registry) Option {
	return internal.WithFilterRegistry(r)
}

// WithBeforeAction appends before-action observers; the last-registered
// observer's vote decides whether the action executes.
func WithBeforeAction(hooks ...BeforeActionHook) Option {
	return internal.WithBeforeAction(hooks...)
}

// WithAfterAction appends after-action observers.
func WithAfterAction(hooks ...AfterActionHook) Option {
	return internal.WithAfterAction(hooks...)
}

// WithModuleResolver supplies a lazy owning-module lookup.
func WithModuleResolver(fn func() *Module) Option {
	return internal.WithModuleResolver(fn)
}

// Module options

// WithModuleLogger sets a module's logger.
func WithModuleLogger(l *slog.Logger) ModuleOption {
	return internal.WithModuleLogger(l)
}

// Context options

// WithContextLogger sets the request-scoped logger on a dispatch context.
func WithContextLogger(l *slog.Logger) ContextOption {
	return internal.WithContextLogger(l)
}

// WithIdentity supplies the host's user-identity lookup on a dispatch
// context.
func WithIdentity(fn func(*http.Request) string) ContextOption {
	return internal.WithIdentity(fn)
}

// Dispatch options

// WithDispatchLogger sets the logger propagated into dispatch contexts.
func WithDispatchLogger(l *slog.Logger) DispatchOption {
	return internal.WithDispatchLogger(l)
}

// WithDispatchIdentity supplies the host's user-identity lookup to the
// transport adapter.
func WithDispatchIdentity(fn func(*http.Request) string) DispatchOption {
	return internal.WithDispatchIdentity(fn)
}

// WithOutputProcessor installs a response middleware pass applied to the
// buffered output before delivery.
func WithOutputProcessor(p OutputProcessor) DispatchOption {
	return internal.WithOutputProcessor(p)
}

// WithDispatchErrorHandler replaces the default error rendering.
func WithDispatchErrorHandler(fn func(Context, error)) DispatchOption {
	return internal.WithDispatchErrorHandler(fn)
}

// WithRequestIDGenerator replaces the default UUID request-id generator.
func WithRequestIDGenerator(fn func() string) DispatchOption {
	return internal.WithRequestIDGenerator(fn)
}

// GetRequestID extracts the request ID from a dispatch context.
func GetRequestID(c Context) string {
	return internal.GetRequestID(c)
}

// RequestIDExtractor returns a logger.ContextExtractor that adds
// "request_id" to log records emitted with a dispatch context.
func RequestIDExtractor() logger.ContextExtractor {
	return internal.RequestIDExtractor()
}
