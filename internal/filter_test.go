package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFilterSpec(t *testing.T) {
	t.Parallel()

	t.Run("bare name applies to everything", func(t *testing.T) {
		t.Parallel()

		spec, err := parseFilterSpec("postOnly")
		require.NoError(t, err)
		require.Equal(t, "postOnly", spec.Name)
		require.Empty(t, spec.Only)
		require.Empty(t, spec.Except)
		require.True(t, spec.appliesTo("anything"))
	})

	t.Run("plus restricts to listed ids", func(t *testing.T) {
		t.Parallel()

		spec, err := parseFilterSpec("postOnly + create, update")
		require.NoError(t, err)
		require.Equal(t, "postOnly", spec.Name)
		require.Equal(t, []string{"create", "update"}, spec.Only)
	})

	t.Run("minus excludes listed ids", func(t *testing.T) {
		t.Parallel()

		spec, err := parseFilterSpec("audit - index,view")
		require.NoError(t, err)
		require.Equal(t, "audit", spec.Name)
		require.Equal(t, []string{"index", "view"}, spec.Except)
	})

	t.Run("whitespace around name and ids is trimmed", func(t *testing.T) {
		t.Parallel()

		spec, err := parseFilterSpec("  audit  +  create ,  update ")
		require.NoError(t, err)
		require.Equal(t, "audit", spec.Name)
		require.Equal(t, []string{"create", "update"}, spec.Only)
	})

	t.Run("empty name is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, err := parseFilterSpec("  + create")
		require.Error(t, err)
		require.True(t, IsConfigError(err))
	})

	t.Run("restriction without ids is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, err := parseFilterSpec("audit + ")
		require.Error(t, err)
		require.True(t, IsConfigError(err))
	})
}

func TestFilterSpecAppliesTo(t *testing.T) {
	t.Parallel()

	t.Run("only admits listed ids case-insensitively", func(t *testing.T) {
		t.Parallel()

		spec := FilterSpec{Name: "x", Only: []string{"Create", "update"}}
		require.True(t, spec.appliesTo("create"))
		require.True(t, spec.appliesTo("UPDATE"))
		require.False(t, spec.appliesTo("delete"))
	})

	t.Run("except rejects listed ids case-insensitively", func(t *testing.T) {
		t.Parallel()

		spec := FilterSpec{Name: "x", Except: []string{"a", "B"}}
		require.False(t, spec.appliesTo("A"))
		require.False(t, spec.appliesTo("b"))
		require.True(t, spec.appliesTo("c"))
	})
}

func TestNormalizeFilterSpec(t *testing.T) {
	t.Parallel()

	t.Run("struct spec must set exactly one of Name and Type", func(t *testing.T) {
		t.Parallel()

		_, _, err := normalizeFilterSpec(FilterSpec{})
		require.True(t, IsConfigError(err))

		_, _, err = normalizeFilterSpec(FilterSpec{Name: "a", Type: "b"})
		require.True(t, IsConfigError(err))

		spec, direct, err := normalizeFilterSpec(FilterSpec{Type: "b"})
		require.NoError(t, err)
		require.Nil(t, direct)
		require.Equal(t, "b", spec.Type)
	})

	t.Run("filter value is used directly", func(t *testing.T) {
		t.Parallel()

		f := FilterFunc(func(chain *FilterChain, c Context, params Params) error {
			return chain.Run(c, params)
		})
		_, direct, err := normalizeFilterSpec(f)
		require.NoError(t, err)
		require.NotNil(t, direct)
	})

	t.Run("unsupported entry type is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, _, err := normalizeFilterSpec(42)
		require.True(t, IsConfigError(err))
	})
}
