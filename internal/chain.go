package internal

// FilterChain is an ordered, lazily-advancing sequence of filters
// terminated by the action itself. Each chain instance serves exactly one
// dispatch: the cursor only moves forward and the chain is not reused.
//
// Continuation is cooperative. A filter receives the chain and decides
// whether the rest of it runs by calling chain.Run; the chain never
// advances past a filter that does not call back.
type FilterChain struct {
	controller *Controller
	action     Action
	filters    []Filter
	cursor     int
}

// NewFilterChain builds a chain for one dispatch. Specs whose action-id
// restriction does not admit the action are excluded here, at construction
// time, so the chain holds only applicable filters in declaration order.
// Method-based specs resolve against the controller's filter table and
// type-based specs against the filter registry; an unresolvable spec is a
// configuration error.
func NewFilterChain(ctrl *Controller, action Action, specs []any) (*FilterChain, error) {
	chain := &FilterChain{
		controller: ctrl,
		action:     action,
	}

	for _, entry := range specs {
		spec, direct, err := normalizeFilterSpec(entry)
		if err != nil {
			return nil, err
		}
		if direct != nil {
			chain.filters = append(chain.filters, direct)
			continue
		}
		if !spec.appliesTo(action.ID()) {
			continue
		}

		f, err := ctrl.resolveFilter(spec)
		if err != nil {
			return nil, err
		}
		chain.filters = append(chain.filters, f)
	}

	return chain, nil
}

// Controller returns the controller the chain dispatches for.
func (fc *FilterChain) Controller() *Controller { return fc.controller }

// Action returns the terminal action of the chain.
func (fc *FilterChain) Action() Action { return fc.action }

// Run advances the chain by one step: the filter at the cursor takes over,
// or, once all filters are consumed, the terminal action executes. Filters
// call Run again to continue; the first unrecovered error unwinds the whole
// chain.
func (fc *FilterChain) Run(c Context, params Params) error {
	if fc.cursor < len(fc.filters) {
		f := fc.filters[fc.cursor]
		fc.cursor++
		return f.Filter(fc, c, params)
	}
	return fc.controller.RunAction(c, fc.action, params)
}
