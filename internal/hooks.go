package internal

// BeforeActionHook observes a dispatch right after action resolution and
// before filters run. Its boolean vote decides whether execution proceeds.
type BeforeActionHook func(c Context, action Action) (bool, error)

// AfterActionHook observes a dispatch after the action completed, receiving
// the output the action produced.
type AfterActionHook func(c Context, action Action, output []byte) error

// hookSet holds the ordered observers wired into a controller.
type hookSet struct {
	before []BeforeActionHook
	after  []AfterActionHook
}

// runBefore invokes every before observer in registration order. All
// observers run (an error aborts immediately), but the last-registered
// observer's vote is the authoritative proceed signal. With no observers
// the dispatch proceeds.
func (h *hookSet) runBefore(c Context, action Action) (bool, error) {
	proceed := true
	for _, fn := range h.before {
		v, err := fn(c, action)
		if err != nil {
			return false, err
		}
		proceed = v
	}
	return proceed, nil
}

// runAfter invokes every after observer in registration order, stopping at
// the first error.
func (h *hookSet) runAfter(c Context, action Action, output []byte) error {
	for _, fn := range h.after {
		if err := fn(c, action, output); err != nil {
			return err
		}
	}
	return nil
}
