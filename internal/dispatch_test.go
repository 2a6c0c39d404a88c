package internal_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/steer/internal"
)

// newTestApp assembles a small module tree behind a chi router the way a
// host application would.
func newTestApp(opts ...internal.DispatchOption) *chi.Mux {
	root := internal.NewModule("")

	site := internal.NewController("site")
	site.HandleFunc("index", func(c internal.Context, p internal.Params) error {
		_, err := c.WriteString("welcome")
		return err
	})
	site.HandleFunc("echo", func(c internal.Context, p internal.Params) error {
		_, err := c.WriteString("echo: " + p.String("msg"))
		return err
	})
	site.HandleFunc("whoami", func(c internal.Context, p internal.Params) error {
		_, err := c.WriteString("rid=" + internal.GetRequestID(c))
		return err
	})
	site.HandleFunc("fail", func(c internal.Context, p internal.Params) error {
		return site.Error(http.StatusForbidden, "not yours")
	})
	root.Register(site)

	admin := internal.NewModule("admin")
	users := internal.NewController("users")
	users.HandleFunc("list", func(c internal.Context, p internal.Params) error {
		_, err := c.WriteString("user list")
		return err
	})
	admin.Register(users)
	root.Mount(admin)

	r := chi.NewRouter()
	internal.Mount(r, root, opts...)
	return r
}

func TestMountRouting(t *testing.T) {
	t.Parallel()

	t.Run("controller and action segments dispatch", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/index", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "welcome", rec.Body.String())
	})

	t.Run("bare controller path runs the default action", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site", nil))
		require.Equal(t, "welcome", rec.Body.String())
	})

	t.Run("root path runs the site controller", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, "welcome", rec.Body.String())
	})

	t.Run("submodule paths dispatch through their subrouter", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users/list", nil))
		require.Equal(t, "user list", rec.Body.String())
	})

	t.Run("all http methods reach the dispatch", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(method, "/site/index", nil))
			require.Equal(t, http.StatusOK, rec.Code, method)
			require.Equal(t, "welcome", rec.Body.String(), method)
		}
	})

	t.Run("verb-scoped access rules see non-POST methods", func(t *testing.T) {
		t.Parallel()

		root := internal.NewModule("")
		ctrl := internal.NewController("doc",
			internal.WithFilters(func() []any { return []any{"accessControl"} }),
			internal.WithAccessRules(func() []internal.AccessRule {
				return []internal.AccessRule{
					{Allow: false, Verbs: []string{"DELETE"}},
				}
			}),
		)
		ctrl.HandleFunc("remove", func(c internal.Context, p internal.Params) error {
			_, err := c.WriteString("removed")
			return err
		})
		root.Register(ctrl)
		r := chi.NewRouter()
		internal.Mount(r, root)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/doc/remove", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doc/remove", nil))
		require.Equal(t, "removed", rec.Body.String())
	})

	t.Run("unknown controller is a 404", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shop/cart", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), `"shop"`)
	})

	t.Run("unknown action is a 404", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/nope", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDispatchParams(t *testing.T) {
	t.Parallel()

	t.Run("query values reach the action", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/echo?msg=hi", nil))
		require.Equal(t, "echo: hi", rec.Body.String())
	})

	t.Run("form values reach the action", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		form := url.Values{"msg": {"posted"}}
		req := httptest.NewRequest(http.MethodPost, "/site/echo", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, "echo: posted", rec.Body.String())
	})
}

func TestDispatchRequestID(t *testing.T) {
	t.Parallel()

	t.Run("incoming id is echoed and visible to the action", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		req := httptest.NewRequest(http.MethodGet, "/site/whoami", nil)
		req.Header.Set(internal.RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, "req-123", rec.Header().Get(internal.RequestIDHeader))
		require.Equal(t, "rid=req-123", rec.Body.String())
	})

	t.Run("missing id is generated", func(t *testing.T) {
		t.Parallel()

		r := newTestApp(internal.WithRequestIDGenerator(func() string { return "gen-1" }))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/whoami", nil))
		require.Equal(t, "gen-1", rec.Header().Get(internal.RequestIDHeader))
		require.Equal(t, "rid=gen-1", rec.Body.String())
	})
}

func TestDispatchErrors(t *testing.T) {
	t.Parallel()

	t.Run("handler failures keep their status and message", func(t *testing.T) {
		t.Parallel()

		r := newTestApp()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/fail", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "not yours", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("custom error handler takes over rendering", func(t *testing.T) {
		t.Parallel()

		r := newTestApp(internal.WithDispatchErrorHandler(func(c internal.Context, err error) {
			c.Response().WriteHeader(http.StatusTeapot)
		}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/fail", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("configuration defects are masked as 500", func(t *testing.T) {
		t.Parallel()

		root := internal.NewModule("")
		broken := internal.NewController("broken", internal.WithActions(func() map[string]any {
			return map[string]any{"boom": map[string]any{"no-type": true}}
		}))
		root.Register(broken)
		r := chi.NewRouter()
		internal.Mount(r, root)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken/boom", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "no-type")
	})
}

func TestDispatchOutputDelivery(t *testing.T) {
	t.Parallel()

	t.Run("identity lookup feeds access rules", func(t *testing.T) {
		t.Parallel()

		root := internal.NewModule("")
		ctrl := internal.NewController("site",
			internal.WithFilters(func() []any { return []any{"accessControl"} }),
			internal.WithAccessRules(func() []internal.AccessRule {
				return []internal.AccessRule{
					{Allow: true, Users: []string{internal.UsersAuthenticated}},
					{Allow: false},
				}
			}),
		)
		ctrl.HandleFunc("index", func(c internal.Context, p internal.Params) error {
			_, err := c.WriteString("hello " + c.UserID())
			return err
		})
		root.Register(ctrl)

		r := chi.NewRouter()
		internal.Mount(r, root, internal.WithDispatchIdentity(func(req *http.Request) string {
			return req.Header.Get("X-User")
		}))

		req := httptest.NewRequest(http.MethodGet, "/site/index", nil)
		req.Header.Set("X-User", "u-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, "hello u-1", rec.Body.String())

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/index", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("output processor wraps the delivered body", func(t *testing.T) {
		t.Parallel()

		wrap := internal.OutputProcessorFunc(func(_ internal.Context, out []byte) ([]byte, error) {
			return bytes.Join([][]byte{[]byte("<layout>"), out, []byte("</layout>")}, nil), nil
		})
		r := newTestApp(internal.WithOutputProcessor(wrap))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/index", nil))
		require.Equal(t, "<layout>welcome</layout>", rec.Body.String())
	})
}
