package internal_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/steer/internal"
)

// newTestContext builds a dispatch context over a recorder for driving
// controllers directly in tests.
func newTestContext(method, target string, opts ...internal.ContextOption) (internal.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	return internal.NewContext(rec, req, opts...), rec
}

// identity returns a ContextOption fixing the authenticated user id.
func identity(userID string) internal.ContextOption {
	return internal.WithIdentity(func(*http.Request) string {
		return userID
	})
}
