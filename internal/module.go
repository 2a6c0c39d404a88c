package internal

import (
	"log/slog"
	"strings"

	"github.com/dmitrymomot/steer/pkg/logger"
)

// Module is an owning context for a set of controllers and nested modules.
// The application root is a module with an empty id; controller unique ids
// are prefixed with the path of module ids above them.
type Module struct {
	id          string
	parent      *Module
	logger      *slog.Logger
	controllers map[string]*Controller
	modules     map[string]*Module
}

// ModuleOption configures a module.
type ModuleOption func(*Module)

// WithModuleLogger sets the module's logger.
func WithModuleLogger(l *slog.Logger) ModuleOption {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModule creates a module. An empty id denotes an application root.
func NewModule(id string, opts ...ModuleOption) *Module {
	m := &Module{
		id:          id,
		logger:      logger.NewNope(),
		controllers: make(map[string]*Controller),
		modules:     make(map[string]*Module),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the module's own id.
func (m *Module) ID() string { return m.id }

// Parent returns the owning module, or nil for a root.
func (m *Module) Parent() *Module { return m.parent }

// Root returns the topmost module of the tree.
func (m *Module) Root() *Module {
	r := m
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// UniqueID returns the slash-joined path of module ids from the root,
// or "" for the root itself.
func (m *Module) UniqueID() string {
	if m.parent == nil || m.id == "" {
		return m.id
	}
	if pid := m.parent.UniqueID(); pid != "" {
		return pid + "/" + m.id
	}
	return m.id
}

// Register attaches a controller to the module under its id.
// The controller's owning module is set in the process.
func (m *Module) Register(ctrl *Controller) *Module {
	ctrl.setModule(m)
	m.controllers[strings.ToLower(ctrl.ID())] = ctrl
	return m
}

// Mount attaches a child module.
func (m *Module) Mount(child *Module) *Module {
	child.parent = m
	m.modules[strings.ToLower(child.id)] = child
	return m
}

// Controller looks up a registered controller by id, case-insensitively.
func (m *Module) Controller(id string) (*Controller, bool) {
	ctrl, ok := m.controllers[strings.ToLower(id)]
	return ctrl, ok
}

// Submodule looks up a child module by id, case-insensitively.
func (m *Module) Submodule(id string) (*Module, bool) {
	child, ok := m.modules[strings.ToLower(id)]
	return child, ok
}

// Controllers returns the registered controllers keyed by lowercase id.
func (m *Module) Controllers() map[string]*Controller {
	out := make(map[string]*Controller, len(m.controllers))
	for k, v := range m.controllers {
		out[k] = v
	}
	return out
}

// Submodules returns the child modules keyed by lowercase id.
func (m *Module) Submodules() map[string]*Module {
	out := make(map[string]*Module, len(m.modules))
	for k, v := range m.modules {
		out[k] = v
	}
	return out
}

// RunRoute dispatches a "controller/action" or "module/controller/action"
// route relative to this module. A route that names no registered module or
// controller fails with a 404 carrying the route.
func (m *Module) RunRoute(c Context, route string, params Params) error {
	route = strings.Trim(route, "/")
	if route == "" {
		return ErrNotFound("Unable to resolve the request.", WithActionID(route))
	}

	head, rest, _ := strings.Cut(route, "/")
	if child, ok := m.Submodule(head); ok {
		return child.RunRoute(c, rest, params)
	}
	if ctrl, ok := m.Controller(head); ok {
		actionID, _, _ := strings.Cut(rest, "/")
		return ctrl.Run(c, actionID, params)
	}

	m.logger.Debug("route did not match any controller",
		slog.String("module", m.UniqueID()),
		slog.String("route", route))
	return ErrNotFound("Unable to resolve the request \""+route+"\".", WithActionID(route))
}
