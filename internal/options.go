package internal

import "log/slog"

// Option configures a controller at construction.
type Option func(*Controller)

// WithDefaultAction sets the action id used when a dispatch supplies none.
// Defaults to "index".
func WithDefaultAction(id string) Option {
	return func(ctrl *Controller) {
		if id != "" {
			ctrl.defaultAction = id
		}
	}
}

// WithLogger sets the controller's logger.
// If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(ctrl *Controller) {
		ctrl.logger = l
	}
}

// WithTranslator sets the translation lookup used by the error helpers.
// Without one, messages fall back to the literal template with
// placeholders substituted.
func WithTranslator(fn TranslateFunc) Option {
	return func(ctrl *Controller) {
		ctrl.translator = fn
	}
}

// WithFilters declares the controller's filter specifications. The
// function is re-evaluated on every dispatch, in declaration order.
// Accepted entries: spec strings ("postOnly + create, update"),
// FilterSpec values, or Filter/PrePostFilter instances.
func WithFilters(fn func() []any) Option {
	return func(ctrl *Controller) {
		ctrl.filtersFn = fn
	}
}

// WithActions declares the controller's action map, re-evaluated on every
// dispatch. Entries are registered type names, config maps with a "type"
// key plus property values, or provider entries under a key ending in ".".
func WithActions(fn func() map[string]any) Option {
	return func(ctrl *Controller) {
		ctrl.actionsFn = fn
	}
}

// WithAccessRules declares the access policy consumed by the built-in
// accessControl filter, re-evaluated on every dispatch.
func WithAccessRules(fn func() []AccessRule) Option {
	return func(ctrl *Controller) {
		ctrl.accessRulesFn = fn
	}
}

// WithActionRegistry shares an action-type registry across controllers
// instead of the per-controller default.
func WithActionRegistry(r *Registry) Option {
	return func(ctrl *Controller) {
		if r != nil {
			ctrl.actionTypes = r
		}
	}
}

// WithFilterRegistry shares a filter-type registry across controllers
// instead of the per-controller default.
func WithFilterRegistry(r *Registry) Option {
	return func(ctrl *Controller) {
		if r != nil {
			ctrl.filterTypes = r
		}
	}
}

// WithBeforeAction appends observers fired after action resolution and
// before the filter chain. All observers run in order; the last-registered
// observer's vote decides whether the action executes.
func WithBeforeAction(hooks ...BeforeActionHook) Option {
	return func(ctrl *Controller) {
		ctrl.hooks.before = append(ctrl.hooks.before, hooks...)
	}
}

// WithAfterAction appends observers fired with the action and its buffered
// output once execution completed.
func WithAfterAction(hooks ...AfterActionHook) Option {
	return func(ctrl *Controller) {
		ctrl.hooks.after = append(ctrl.hooks.after, hooks...)
	}
}

// WithModuleResolver supplies a lazy owning-module lookup, consulted once
// and cached when the controller was not registered on a module directly.
func WithModuleResolver(fn func() *Module) Option {
	return func(ctrl *Controller) {
		ctrl.moduleFn = fn
	}
}
