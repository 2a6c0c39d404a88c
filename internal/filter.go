package internal

import (
	"strings"
)

// Filter is a single pre/post interceptor around action execution. A filter
// continues the chain by calling chain.Run and short-circuits by returning
// without doing so. Errors unwind through the chain untouched.
type Filter interface {
	Filter(chain *FilterChain, c Context, params Params) error
}

// FilterFunc adapts a function to the Filter interface. Method-based
// filters registered on a controller with FilterFunc use this signature.
type FilterFunc func(chain *FilterChain, c Context, params Params) error

func (f FilterFunc) Filter(chain *FilterChain, c Context, params Params) error {
	return f(chain, c, params)
}

// PrePostFilter is the structured filter contract: PreFilter runs before
// the rest of the chain and vetoes it by returning false; PostFilter runs
// after the chain completes, and only if PreFilter allowed continuation.
// The chain wraps a PrePostFilter so that
//
//	pre -> chain.Run -> post
//
// happens automatically, mirroring how middleware wraps a handler.
type PrePostFilter interface {
	PreFilter(chain *FilterChain, c Context) (bool, error)
	PostFilter(chain *FilterChain, c Context) error
}

// prePostAdapter drives a PrePostFilter through the cooperative chain
// protocol. A false PreFilter vote stops the chain here: deeper filters and
// the action do not run, and PostFilter is skipped.
type prePostAdapter struct {
	f PrePostFilter
}

func (a prePostAdapter) Filter(chain *FilterChain, c Context, params Params) error {
	ok, err := a.f.PreFilter(chain, c)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := chain.Run(c, params); err != nil {
		return err
	}
	return a.f.PostFilter(chain, c)
}

// FilterSpec is the structured form of a filter declaration: either a
// method-based filter by Name or a registered filter type by Type, with an
// optional action-id restriction and initialization properties.
type FilterSpec struct {
	// Name refers to a filter registered on the controller with FilterFunc.
	Name string

	// Type refers to a filter type in the filter registry. Exactly one of
	// Name and Type must be set.
	Type string

	// Only restricts the filter to the listed action ids.
	Only []string

	// Except excludes the filter for the listed action ids.
	Except []string

	// Props holds initialization values for a Type-based filter.
	Props map[string]any
}

// appliesTo reports whether the spec's restriction admits the action id.
// Comparison is case-insensitive; an empty restriction admits everything.
func (s FilterSpec) appliesTo(actionID string) bool {
	if len(s.Only) > 0 {
		return containsFold(s.Only, actionID)
	}
	if len(s.Except) > 0 {
		return !containsFold(s.Except, actionID)
	}
	return true
}

func containsFold(ids []string, id string) bool {
	for _, v := range ids {
		if strings.EqualFold(v, id) {
			return true
		}
	}
	return false
}

// parseFilterSpec parses the string spec grammar:
//
//	"name"              always applies
//	"name + id1, id2"   applies only to the listed action ids
//	"name - id1, id2"   applies to all but the listed action ids
//
// The result names a method-based filter; string specs cannot carry
// initialization properties.
func parseFilterSpec(raw string) (FilterSpec, error) {
	spec := FilterSpec{}

	name, rest, restricted := cutRestriction(raw)
	spec.Name = strings.TrimSpace(name)
	if spec.Name == "" {
		return spec, NewConfigError("filter", "empty filter name in spec %q", raw)
	}
	if !restricted {
		return spec, nil
	}

	op := rest[0]
	ids := splitIDs(rest[1:])
	if len(ids) == 0 {
		return spec, NewConfigError("filter", "spec %q restricts to an empty action list", raw)
	}
	if op == '+' {
		spec.Only = ids
	} else {
		spec.Except = ids
	}
	return spec, nil
}

// cutRestriction splits "name + ids" into name and the "+ ids" remainder.
// The first standalone +/- past the name starts the restriction.
func cutRestriction(raw string) (name, rest string, ok bool) {
	if i := strings.IndexAny(raw, "+-"); i >= 0 {
		return raw[:i], raw[i:], true
	}
	return raw, "", false
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// normalizeFilterSpec turns a declared filter entry into a FilterSpec.
// Accepted forms: a spec string, a FilterSpec, or a Filter/PrePostFilter
// value used as-is.
func normalizeFilterSpec(entry any) (FilterSpec, Filter, error) {
	switch v := entry.(type) {
	case string:
		spec, err := parseFilterSpec(v)
		return spec, nil, err
	case FilterSpec:
		if (v.Name == "") == (v.Type == "") {
			return v, nil, NewConfigError("filter", "spec must set exactly one of Name and Type")
		}
		return v, nil, nil
	case Filter:
		return FilterSpec{}, v, nil
	case PrePostFilter:
		return FilterSpec{}, prePostAdapter{f: v}, nil
	default:
		return FilterSpec{}, nil, NewConfigError("filter", "unsupported filter spec of type %T", entry)
	}
}
