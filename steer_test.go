package steer_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/steer"
	"github.com/dmitrymomot/steer/pkg/i18n"
)

// downloadAction is a configurable class-based action.
type downloadAction struct {
	steer.BaseAction
	Path string `mapstructure:"path"`
}

func (a *downloadAction) Run(c steer.Context, p steer.Params) error {
	_, err := c.WriteString("serving " + a.Path)
	return err
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	newRouter := func(t *testing.T) *chi.Mux {
		t.Helper()

		post := steer.NewController("post",
			steer.WithFilters(func() []any {
				return []any{"postOnly + create", "accessControl"}
			}),
			steer.WithAccessRules(func() []steer.AccessRule {
				return []steer.AccessRule{
					{Allow: true, Actions: []string{"delete"}, Users: []string{steer.UsersAuthenticated}},
					{Allow: false, Actions: []string{"delete"}},
				}
			}),
			steer.WithActions(func() map[string]any {
				return map[string]any{
					"download": map[string]any{"type": "download", "path": "report.pdf"},
				}
			}),
		)
		post.RegisterAction("download", func() any { return &downloadAction{} })
		post.HandleFunc("index", func(c steer.Context, p steer.Params) error {
			_, err := c.WriteString("post index")
			return err
		})
		post.HandleFunc("create", func(c steer.Context, p steer.Params) error {
			_, err := c.WriteString("created " + p.String("title"))
			return err
		})
		post.HandleFunc("delete", func(c steer.Context, p steer.Params) error {
			_, err := c.WriteString("deleted")
			return err
		})

		root := steer.NewModule("")
		root.Register(post)

		r := chi.NewRouter()
		steer.Mount(r, root, steer.WithDispatchIdentity(func(req *http.Request) string {
			return req.Header.Get("X-User")
		}))
		return r
	}

	t.Run("inline action over the router", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post/index", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "post index", rec.Body.String())
	})

	t.Run("class-based action with configured properties", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post/download", nil))
		require.Equal(t, "serving report.pdf", rec.Body.String())
	})

	t.Run("restricted method filter guards only its actions", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post/create?title=x", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/post/create?title=hello", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "created hello", rec.Body.String())
	})

	t.Run("access rules gate by identity", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post/delete", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/post/delete", nil)
		req.Header.Set("X-User", "u-1")
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, "deleted", rec.Body.String())
	})
}

func TestTranslatedErrors(t *testing.T) {
	t.Parallel()

	catalog, err := i18n.New(i18n.WithMessages("uk", map[string]string{
		`The system is unable to find the requested action "{{action}}".`: "Дію {{action}} не знайдено.",
	}))
	require.NoError(t, err)
	tr := i18n.NewTranslator(catalog, "uk")

	ctrl := steer.NewController("post", steer.WithTranslator(tr.TranslateMessage))

	rec := httptest.NewRecorder()
	c := steer.NewContext(rec, httptest.NewRequest(http.MethodGet, "/post/nope", nil))
	runErr := ctrl.Run(c, "nope", nil)
	httpErr := steer.AsHTTPError(runErr)
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
	require.Equal(t, "Дію nope не знайдено.", httpErr.Message)
}
