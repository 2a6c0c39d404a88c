package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/steer/internal"
)

type widget struct {
	Label string `mapstructure:"label"`
	Limit int    `mapstructure:"limit"`
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("factories produce fresh instances", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRegistry()
		r.Register("widget", func() any { return &widget{} })

		a, err := r.New("widget", nil)
		require.NoError(t, err)
		b, err := r.New("widget", nil)
		require.NoError(t, err)
		require.NotSame(t, a.(*widget), b.(*widget))
	})

	t.Run("properties decode onto tagged fields", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRegistry()
		r.Register("widget", func() any { return &widget{} })

		v, err := r.New("widget", map[string]any{"label": "hello", "limit": "10"})
		require.NoError(t, err)
		w := v.(*widget)
		require.Equal(t, "hello", w.Label)
		require.Equal(t, 10, w.Limit)
	})

	t.Run("unknown type is a configuration error", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRegistry()
		_, err := r.New("gadget", nil)
		require.True(t, internal.IsConfigError(err))
		require.ErrorContains(t, err, `"gadget"`)
	})

	t.Run("unrecognized property is a configuration error", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRegistry()
		r.Register("widget", func() any { return &widget{} })

		_, err := r.New("widget", map[string]any{"color": "red"})
		require.True(t, internal.IsConfigError(err))
	})

	t.Run("re-registering a name replaces the factory", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRegistry()
		r.Register("widget", func() any { return &widget{Label: "old"} })
		r.Register("widget", func() any { return &widget{Label: "new"} })

		v, err := r.New("widget", nil)
		require.NoError(t, err)
		require.Equal(t, "new", v.(*widget).Label)
	})

	t.Run("registered reports known names", func(t *testing.T) {
		t.Parallel()

		r := internal.NewRegistry()
		require.False(t, r.Registered("widget"))
		r.Register("widget", func() any { return &widget{} })
		require.True(t, r.Registered("widget"))
	})
}
