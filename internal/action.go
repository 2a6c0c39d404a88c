package internal

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Action is a unit of work bound to one controller and one action
// identifier. Actions are created fresh per dispatch and discarded after
// the call returns.
type Action interface {
	// ID returns the action identifier the action was resolved under.
	ID() string

	// Controller returns the owning controller.
	Controller() *Controller

	// Run executes the action with the bound dispatch parameters.
	// Returning ErrInvalidParams (possibly wrapped) signals that required
	// parameters could not be bound from the input.
	Run(c Context, params Params) error
}

// HandlerFunc is the signature of an inline action handler registered on a
// controller with HandleFunc.
type HandlerFunc func(c Context, params Params) error

// inlineAction delegates to a handler registered on the controller's
// method table.
type inlineAction struct {
	controller *Controller
	id         string
	fn         HandlerFunc
}

func (a *inlineAction) ID() string              { return a.id }
func (a *inlineAction) Controller() *Controller { return a.controller }

func (a *inlineAction) Run(c Context, params Params) error {
	return a.fn(c, params)
}

// BaseAction carries the controller/action-id binding for standalone action
// types produced from configuration. Embed it and implement Run:
//
//	type DownloadAction struct {
//	    steer.BaseAction
//	    Root string
//	}
//
//	func (a *DownloadAction) Run(c steer.Context, p steer.Params) error { ... }
type BaseAction struct {
	controller *Controller
	id         string
}

// ID returns the action identifier the action was resolved under.
func (a *BaseAction) ID() string { return a.id }

// Controller returns the owning controller.
func (a *BaseAction) Controller() *Controller { return a.controller }

// Bind attaches the action to its controller and identifier. It is called
// once by the resolver right after instantiation.
func (a *BaseAction) Bind(ctrl *Controller, id string) {
	a.controller = ctrl
	a.id = id
}

// binder is satisfied by actions embedding BaseAction; the resolver uses it
// to supply the controller + action-id construction context.
type binder interface {
	Bind(ctrl *Controller, id string)
}

// ActionProvider exposes a nested action map. A provider instance is
// resolved from a map entry whose key ends in the provider delimiter; the
// remainder of the requested id is looked up in the provider's own map.
type ActionProvider interface {
	Actions() map[string]any
}

// BindParams decodes named dispatch parameters into a typed struct.
// Unknown parameters are ignored; a value that cannot be converted to the
// target field type yields ErrInvalidParams so the dispatcher can respond
// with a 400.
//
//	var opts struct {
//	    Page int    `mapstructure:"page"`
//	    Tag  string `mapstructure:"tag"`
//	}
//	if err := steer.BindParams(params, &opts); err != nil {
//	    return err
//	}
func BindParams(params Params, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err := dec.Decode(map[string]any(params)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}
