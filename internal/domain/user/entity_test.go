package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user and hashes password", func(t *testing.T) {
		u, err := NewUser("Alice@Example.com", "Alice", "supersecret")
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", u.Email())
		assert.Equal(t, "Alice", u.Name())
		assert.NotEqual(t, "supersecret", u.PasswordHash())
		assert.NoError(t, u.CheckPassword("supersecret"))
		assert.Error(t, u.CheckPassword("wrong"))
		assert.Empty(t, u.CustomFilters())
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("a@b.com", "Alice", "short")
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Alice", "supersecret")
		assert.Error(t, err)
	})
}

func TestUpdatePassword(t *testing.T) {
	u, err := NewUser("a@b.com", "Alice", "supersecret")
	require.NoError(t, err)

	require.NoError(t, u.UpdatePassword("newsecret123"))
	assert.NoError(t, u.CheckPassword("newsecret123"))
	assert.Error(t, u.CheckPassword("supersecret"))
}

func TestCustomFilters(t *testing.T) {
	newTestUser := func(t *testing.T) *User {
		u, err := NewUser("a@b.com", "Alice", "supersecret")
		require.NoError(t, err)
		return u
	}

	t.Run("add assigns an id and the reserved row", func(t *testing.T) {
		u := newTestUser(t)

		f, err := u.AddFilter("Végétarien", "#10B981")
		require.NoError(t, err)
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, "Végétarien", f.Name)
		assert.Equal(t, CustomFilterRow, f.Row)
		assert.Equal(t, "#10B981", f.Color)
		assert.True(t, u.HasFilter(f.ID))
	})

	t.Run("empty color falls back to the default", func(t *testing.T) {
		u := newTestUser(t)

		f, err := u.AddFilter("Rapide", "")
		require.NoError(t, err)
		assert.Equal(t, defaultFilterColor, f.Color)
	})

	t.Run("duplicate names are rejected case-insensitively", func(t *testing.T) {
		u := newTestUser(t)

		_, err := u.AddFilter("Végétarien", "")
		require.NoError(t, err)
		_, err = u.AddFilter("végétarien", "")
		assert.ErrorIs(t, err, ErrFilterExists)
	})

	t.Run("cannot shadow a default filter name", func(t *testing.T) {
		u := newTestUser(t)

		_, err := u.AddFilter("Desserts", "")
		assert.ErrorIs(t, err, ErrFilterExists)
	})

	t.Run("rename and remove", func(t *testing.T) {
		u := newTestUser(t)

		f, err := u.AddFilter("Rapide", "#EF4444")
		require.NoError(t, err)

		require.NoError(t, u.RenameFilter(f.ID, "Express", ""))
		assert.Equal(t, "Express", u.CustomFilters()[0].Name)
		assert.Equal(t, "#EF4444", u.CustomFilters()[0].Color)

		require.NoError(t, u.RenameFilter(f.ID, "Express", "#3B82F6"))
		assert.Equal(t, "#3B82F6", u.CustomFilters()[0].Color)

		require.NoError(t, u.RemoveFilter(f.ID))
		assert.Empty(t, u.CustomFilters())
		assert.ErrorIs(t, u.RemoveFilter(f.ID), ErrFilterNotFound)
	})
}

func TestReconstructBackfillsFilterDisplayData(t *testing.T) {
	u, err := NewUser("a@b.com", "Alice", "supersecret")
	require.NoError(t, err)

	rebuilt := Reconstruct(
		u.ID(), u.Email(), u.Name(), u.PasswordHash(),
		[]Filter{{ID: "old", Name: "Ancien"}},
		u.CreatedAt(), u.UpdatedAt(), nil,
	)

	f := rebuilt.CustomFilters()[0]
	assert.Equal(t, CustomFilterRow, f.Row)
	assert.Equal(t, defaultFilterColor, f.Color)
}

func TestDefaultFilters(t *testing.T) {
	filters := DefaultFilters()
	require.Len(t, filters, 8)

	assert.Equal(t, "apero", filters[0].ID)
	assert.Equal(t, "Apéro", filters[0].Name)

	// Defaults live on rows 1 and 2, row 3 stays reserved for customs,
	// and every entry carries a color.
	for _, f := range filters {
		assert.Contains(t, []int{1, 2}, f.Row, f.ID)
		assert.NotEmpty(t, f.Color, f.ID)
	}

	assert.True(t, IsDefaultFilter("desserts"))
	assert.False(t, IsDefaultFilter("not-a-filter"))

	// Callers cannot mutate the catalog
	filters[0].Name = "Hacked"
	assert.Equal(t, "Apéro", DefaultFilters()[0].Name)
}

func TestHasFilter(t *testing.T) {
	u, err := NewUser("a@b.com", "Alice", "supersecret")
	require.NoError(t, err)

	assert.True(t, u.HasFilter("plats"))
	assert.False(t, u.HasFilter("unknown"))

	f, err := u.AddFilter("Batch cooking", "")
	require.NoError(t, err)
	assert.True(t, u.HasFilter(f.ID))
}
