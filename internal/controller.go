package internal

import (
	"errors"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/dmitrymomot/steer/pkg/i18n"
)

// DefaultAction is the action id substituted when a dispatch supplies none.
const DefaultAction = "index"

// reservedActionID never resolves through the handler table. It guards the
// naming collision between an "s" action and the Actions() map accessor
// that the handler-registration convention would otherwise produce. The
// comparison is case-insensitive; the id can still resolve via the map.
const reservedActionID = "s"

// providerDelimiter terminates an action-provider prefix in the action map.
const providerDelimiter = "."

// configKeyType is the key naming the registered type in a map-form
// action or provider configuration entry.
const configKeyType = "type"

// TranslateFunc maps a message template plus placeholder values to
// localized text. When none is configured the literal template is used with
// the placeholders substituted in.
type TranslateFunc func(message string, placeholders map[string]any) string

// Controller owns action resolution and dispatch orchestration: it turns a
// textual action identifier into an executable action, wraps execution in
// the declared filter chain, and fires the before/after hooks around the
// whole run.
//
// A controller instance serves one dispatch at a time. Re-entrancy from
// synchronous forwarding is supported through save/restore of the current
// action; concurrent use of one instance across requests is not.
type Controller struct {
	id            string
	defaultAction string
	logger        *slog.Logger
	translator    TranslateFunc

	module     *Module
	moduleFn   func() *Module
	moduleOnce sync.Once

	handlers    map[string]HandlerFunc
	filterTable map[string]FilterFunc

	actionTypes *Registry
	filterTypes *Registry

	filtersFn     func() []any
	actionsFn     func() map[string]any
	accessRulesFn func() []AccessRule

	hooks hookSet

	currentAction Action
}

// NewController creates a controller with the given immutable id. The
// built-in method filters (postOnly, ajaxOnly, accessControl) are
// registered on every controller.
func NewController(id string, opts ...Option) *Controller {
	ctrl := &Controller{
		id:            id,
		defaultAction: DefaultAction,
		handlers:      make(map[string]HandlerFunc),
		filterTable:   make(map[string]FilterFunc),
		actionTypes:   NewRegistry(),
		filterTypes:   NewRegistry(),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	if ctrl.logger == nil {
		ctrl.logger = slog.Default()
	}

	ctrl.FilterFunc("postOnly", ctrl.filterPostOnly)
	ctrl.FilterFunc("ajaxOnly", ctrl.filterAjaxOnly)
	ctrl.FilterFunc("accessControl", ctrl.filterAccessControl)

	return ctrl
}

// ID returns the controller id assigned at construction.
func (ctrl *Controller) ID() string { return ctrl.id }

// DefaultAction returns the action id used when a dispatch supplies none.
func (ctrl *Controller) DefaultAction() string { return ctrl.defaultAction }

// CurrentAction returns the action presently executing, or nil when idle.
func (ctrl *Controller) CurrentAction() Action { return ctrl.currentAction }

// Module returns the owning module. When the controller was not registered
// on a module, a configured resolver is consulted once and cached.
func (ctrl *Controller) Module() *Module {
	ctrl.moduleOnce.Do(func() {
		if ctrl.module == nil && ctrl.moduleFn != nil {
			ctrl.module = ctrl.moduleFn()
		}
	})
	return ctrl.module
}

func (ctrl *Controller) setModule(m *Module) {
	ctrl.module = m
}

// UniqueID returns the module-prefixed controller id, or the bare id when
// no module is attached.
func (ctrl *Controller) UniqueID() string {
	if m := ctrl.Module(); m != nil {
		if mid := m.UniqueID(); mid != "" {
			return mid + "/" + ctrl.id
		}
	}
	return ctrl.id
}

// HandleFunc registers an inline action handler. Lookup is by lowercase
// name, so a dispatch for "Index" hits the handler registered as "index".
func (ctrl *Controller) HandleFunc(name string, fn HandlerFunc) {
	ctrl.handlers[strings.ToLower(name)] = fn
}

// FilterFunc registers a method-based filter usable by name in filter
// specifications.
func (ctrl *Controller) FilterFunc(name string, fn FilterFunc) {
	ctrl.filterTable[strings.ToLower(name)] = fn
}

// RegisterAction binds a type name in the controller's action registry.
// Both class-based actions and action providers resolve through it.
func (ctrl *Controller) RegisterAction(name string, factory func() any) {
	ctrl.actionTypes.Register(name, factory)
}

// RegisterFilter binds a type name in the controller's filter registry.
func (ctrl *Controller) RegisterFilter(name string, factory func() any) {
	ctrl.filterTypes.Register(name, factory)
}

// Filters returns the declared filter specifications. The declaration is
// re-evaluated per call so per-request overrides take effect.
func (ctrl *Controller) Filters() []any {
	if ctrl.filtersFn == nil {
		return nil
	}
	return ctrl.filtersFn()
}

// Actions returns the declared action map, re-evaluated per call.
func (ctrl *Controller) Actions() map[string]any {
	if ctrl.actionsFn == nil {
		return nil
	}
	return ctrl.actionsFn()
}

// AccessRules returns the declared access policy, re-evaluated per call.
func (ctrl *Controller) AccessRules() []AccessRule {
	if ctrl.accessRulesFn == nil {
		return nil
	}
	return ctrl.accessRulesFn()
}

// CreateAction resolves an action identifier. The handler table is checked
// first, so an inline handler always shadows a map entry with the same id.
// A nil, nil return means "no action"; the caller raises the 404 through
// MissingAction.
func (ctrl *Controller) CreateAction(actionID string) (Action, error) {
	if actionID == "" {
		actionID = ctrl.defaultAction
	}

	if !strings.EqualFold(actionID, reservedActionID) {
		if fn, ok := ctrl.handlers[strings.ToLower(actionID)]; ok {
			return &inlineAction{controller: ctrl, id: actionID, fn: fn}, nil
		}
	}

	return ctrl.createActionFromMap(actionID)
}

// createActionFromMap resolves against the declarative action map: exact
// entries first, then a provider whose registered prefix (up to and
// including the delimiter) matches the requested id. An id containing the
// delimiter with no registered prefix is "no action", not a fallthrough.
func (ctrl *Controller) createActionFromMap(actionID string) (Action, error) {
	actionMap := ctrl.Actions()

	if entry, ok := actionMap[actionID]; ok {
		return ctrl.instantiateAction(actionID, entry)
	}

	i := strings.Index(actionID, providerDelimiter)
	if i < 0 {
		return nil, nil
	}
	prefix, remainder := actionID[:i+1], actionID[i+1:]
	entry, ok := actionMap[prefix]
	if !ok {
		return nil, nil
	}
	return ctrl.createActionFromProvider(actionID, remainder, entry)
}

// createActionFromProvider resolves the remainder of a prefixed id in the
// provider's own action map, merging any per-action override found in the
// outer provider entry over the inner configuration (outer wins).
func (ctrl *Controller) createActionFromProvider(actionID, remainder string, entry any) (Action, error) {
	typeName, overrides, err := splitProviderEntry(entry)
	if err != nil {
		return nil, err
	}

	v, err := ctrl.actionTypes.New(typeName, nil)
	if err != nil {
		return nil, err
	}
	provider, ok := v.(ActionProvider)
	if !ok {
		return nil, NewConfigError("provider", "type %q does not expose an action map", typeName)
	}

	inner, ok := provider.Actions()[remainder]
	if !ok {
		return nil, nil
	}

	innerType, innerProps, err := splitActionEntry(inner)
	if err != nil {
		return nil, err
	}
	props := maps.Clone(innerProps)
	if ov, ok := overrides[remainder].(map[string]any); ok {
		if props == nil {
			props = make(map[string]any, len(ov))
		}
		maps.Copy(props, ov)
	}

	return ctrl.newBoundAction(actionID, innerType, props)
}

// instantiateAction handles a direct map entry: a string type reference or
// a config map carrying the type key plus property values.
func (ctrl *Controller) instantiateAction(actionID string, entry any) (Action, error) {
	typeName, props, err := splitActionEntry(entry)
	if err != nil {
		return nil, err
	}
	return ctrl.newBoundAction(actionID, typeName, props)
}

// newBoundAction instantiates a registered action type, binds it to the
// controller and id, and verifies the run capability. A resolved object
// that cannot run is a configuration error, not a 404.
func (ctrl *Controller) newBoundAction(actionID, typeName string, props map[string]any) (Action, error) {
	v, err := ctrl.actionTypes.New(typeName, props)
	if err != nil {
		return nil, err
	}
	if b, ok := v.(binder); ok {
		b.Bind(ctrl, actionID)
	}
	action, ok := v.(Action)
	if !ok {
		return nil, NewConfigError("action", "type %q does not implement Action", typeName)
	}
	return action, nil
}

// splitActionEntry extracts the type name and properties from a direct
// action entry.
func splitActionEntry(entry any) (string, map[string]any, error) {
	switch v := entry.(type) {
	case string:
		return v, nil, nil
	case map[string]any:
		typeName, ok := v[configKeyType].(string)
		if !ok || typeName == "" {
			return "", nil, NewConfigError("action", "map entry is missing the %q key", configKeyType)
		}
		props := maps.Clone(v)
		delete(props, configKeyType)
		return typeName, props, nil
	default:
		return "", nil, NewConfigError("action", "unsupported map entry of type %T", entry)
	}
}

// splitProviderEntry extracts the provider type name and the per-action
// override configs from a provider entry.
func splitProviderEntry(entry any) (string, map[string]any, error) {
	switch v := entry.(type) {
	case string:
		return v, nil, nil
	case map[string]any:
		typeName, ok := v[configKeyType].(string)
		if !ok || typeName == "" {
			return "", nil, NewConfigError("provider", "entry is missing the %q key", configKeyType)
		}
		overrides := maps.Clone(v)
		delete(overrides, configKeyType)
		return typeName, overrides, nil
	default:
		return "", nil, NewConfigError("provider", "unsupported entry of type %T", entry)
	}
}

// Run resolves and executes an action: missing resolution raises the 404,
// the before hooks vote on proceeding, the filter chain wraps execution,
// and the after hooks observe the output the action buffered. Output stays
// in the dispatch context; the transport adapter delivers it once.
func (ctrl *Controller) Run(c Context, actionID string, params Params) error {
	action, err := ctrl.CreateAction(actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return ctrl.MissingAction(actionID)
	}

	ctrl.logger.DebugContext(c, "running action",
		slog.String("controller", ctrl.UniqueID()),
		slog.String("action", action.ID()))

	proceed, err := ctrl.hooks.runBefore(c, action)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	mark := c.OutputLen()
	if err := ctrl.RunActionWithFilters(c, action, ctrl.Filters(), params); err != nil {
		return err
	}
	output := c.Output()[mark:]

	return ctrl.hooks.runAfter(c, action, output)
}

// RunActionWithFilters executes the action behind the declared filter
// specifications; with none declared the action runs directly. The current
// action is saved and restored so nested forwards do not corrupt the
// caller's notion of the action in flight.
func (ctrl *Controller) RunActionWithFilters(c Context, action Action, specs []any, params Params) error {
	if len(specs) == 0 {
		return ctrl.RunAction(c, action, params)
	}

	prior := ctrl.currentAction
	ctrl.currentAction = action
	defer func() { ctrl.currentAction = prior }()

	chain, err := NewFilterChain(ctrl, action, specs)
	if err != nil {
		return err
	}
	return chain.Run(c, params)
}

// RunAction executes the action with the bound parameters. A parameter
// binding failure is not a normal result: it is translated into the
// 400-class response of InvalidActionParams.
func (ctrl *Controller) RunAction(c Context, action Action, params Params) error {
	prior := ctrl.currentAction
	ctrl.currentAction = action
	defer func() { ctrl.currentAction = prior }()

	if err := action.Run(c, params); err != nil {
		if errors.Is(err, ErrInvalidParams) {
			return ctrl.InvalidActionParams(c)
		}
		return err
	}
	return nil
}

// MissingAction raises the not-found failure for an unresolvable action
// id. The error carries the originally requested id, substituting the
// default action for display when the request supplied none.
func (ctrl *Controller) MissingAction(actionID string) error {
	if actionID == "" {
		actionID = ctrl.defaultAction
	}
	msg := ctrl.translate(
		"The system is unable to find the requested action \"{{action}}\".",
		map[string]any{"action": actionID})
	return ErrNotFound(msg, WithActionID(actionID))
}

// InvalidActionParams raises the 400-class failure for a dispatch whose
// required parameters could not be bound.
func (ctrl *Controller) InvalidActionParams(c Context) error {
	return ErrBadRequest(ctrl.translate("Your request is invalid.", nil))
}

// Error builds an HTTP-style failure with the given code. An empty message
// defaults to the standard reason phrase, passed through the configured
// translation lookup when one is present.
func (ctrl *Controller) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = ctrl.translate(StatusPhrase(code), nil)
	}
	return NewHTTPError(code, message, opts...)
}

// Forward re-dispatches within the same call stack. A bare action id runs
// on this controller; a slash-qualified route goes through the module tree
// and never re-enters this controller's handler table. A leading slash
// anchors the route at the application root.
func (ctrl *Controller) Forward(c Context, route string, params Params) error {
	if !strings.Contains(route, "/") {
		return ctrl.Run(c, route, params)
	}

	m := ctrl.Module()
	if m == nil {
		return NewConfigError("controller", "controller %q has no module to forward route %q through", ctrl.id, route)
	}
	if strings.HasPrefix(route, "/") {
		m = m.Root()
	}
	return m.RunRoute(c, route, params)
}

// resolveFilter turns a parsed specification into an executable filter.
func (ctrl *Controller) resolveFilter(spec FilterSpec) (Filter, error) {
	if spec.Name != "" {
		fn, ok := ctrl.filterTable[strings.ToLower(spec.Name)]
		if !ok {
			return nil, NewConfigError("filter", "controller %q has no filter named %q", ctrl.id, spec.Name)
		}
		return fn, nil
	}

	v, err := ctrl.filterTypes.New(spec.Type, spec.Props)
	if err != nil {
		return nil, err
	}
	switch f := v.(type) {
	case Filter:
		return f, nil
	case PrePostFilter:
		return prePostAdapter{f: f}, nil
	default:
		return nil, NewConfigError("filter", "type %q does not implement Filter", spec.Type)
	}
}

// translate passes a message through the configured translation lookup,
// falling back to the literal template with placeholders substituted.
func (ctrl *Controller) translate(message string, placeholders map[string]any) string {
	if ctrl.translator != nil {
		return ctrl.translator(message, placeholders)
	}
	return i18n.ReplacePlaceholders(message, placeholders)
}

// Built-in method filters.

// filterPostOnly continues the chain only for HTTP POST requests.
func (ctrl *Controller) filterPostOnly(chain *FilterChain, c Context, params Params) error {
	if c.IsPost() {
		return chain.Run(c, params)
	}
	return ErrBadRequest(ctrl.translate(
		"Your request is invalid. Please do not repeat this request again.", nil))
}

// filterAjaxOnly continues the chain only for AJAX-style requests.
func (ctrl *Controller) filterAjaxOnly(chain *FilterChain, c Context, params Params) error {
	if c.IsAjax() {
		return chain.Run(c, params)
	}
	return ErrBadRequest(ctrl.translate(
		"Your request is invalid. Please do not repeat this request again.", nil))
}

// filterAccessControl enforces the controller's access rules, re-evaluated
// per dispatch.
func (ctrl *Controller) filterAccessControl(chain *FilterChain, c Context, params Params) error {
	f := &AccessControlFilter{Rules: ctrl.AccessRules()}
	return prePostAdapter{f: f}.Filter(chain, c, params)
}
