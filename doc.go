// Package steer provides the controller layer of a web MVC stack: action
// resolution, a chain-of-responsibility filter pipeline around action
// execution, and dispatch orchestration with before/after hooks.
//
// Steer deliberately owns no transport: the HTTP server, routing table,
// templating, and persistence stay with the host. A thin chi adapter
// ([Mount]) bridges requests into [Controller.Run], and everything a
// dispatch produces is buffered and delivered once.
//
// # Controllers
//
// A controller binds inline action handlers and declares its filters and
// action map:
//
//	ctrl := steer.NewController("post",
//	    steer.WithFilters(func() []any {
//	        return []any{
//	            "accessControl",
//	            "postOnly + delete",
//	        }
//	    }),
//	)
//	ctrl.HandleFunc("index", func(c steer.Context, p steer.Params) error {
//	    _, err := c.WriteString("post index")
//	    return err
//	})
//
// # Filters
//
// Filters wrap action execution and continue the chain cooperatively by
// calling chain.Run; returning without doing so short-circuits deeper
// filters and the action:
//
//	ctrl.FilterFunc("timed", func(chain *steer.FilterChain, c steer.Context, p steer.Params) error {
//	    start := time.Now()
//	    err := chain.Run(c, p)
//	    c.Logger().Info("action timed", "elapsed", time.Since(start))
//	    return err
//	})
//
// String specs restrict filters to action ids: "name + a, b" runs only for
// a and b, "name - a, b" for everything else. Restrictions are applied when
// the chain is built, not at run time.
//
// # Errors
//
// Failures unwind unchanged through the chain as [*HTTPError] values
// (404 unresolved action, 400 parameter binding or precondition filters,
// 403 access control). Misdeclared configuration surfaces as
// [*ConfigError], a programming defect that is never shown to users.
package steer
