package gorm

import (
	"context"
	"testing"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlib "gorm.io/gorm"
)

func newTestDB(t *testing.T) *gormlib.DB {
	t.Helper()
	db, err := NewTestDatabase()
	require.NoError(t, err)
	return db
}

func newTestUser(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(email, "Test User", "supersecret")
	require.NoError(t, err)
	return u
}

func newTestRecipe(t *testing.T, owner *user.User, title string) *recipe.Recipe {
	t.Helper()
	r, err := recipe.New(owner.ID(), owner.Name(), recipe.Content{
		Title:       title,
		Description: "desc",
		PrepTime:    10,
		CookTime:    20,
		Servings:    4,
		Ingredients: []recipe.Ingredient{{Name: "farine", Quantity: "200", Unit: "g"}},
		Steps:       []recipe.Step{{StepNumber: 1, Instruction: "Mélanger"}},
	}, recipe.Source{Type: recipe.SourceManual})
	require.NoError(t, err)
	return r
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and find roundtrip", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		u := newTestUser(t, "alice@example.com")

		require.NoError(t, repo.Create(ctx, u))

		found, err := repo.FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.Equal(t, u.Email(), found.Email())
		assert.Equal(t, u.PasswordHash(), found.PasswordHash())
		assert.NoError(t, found.CheckPassword("supersecret"))
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		u := newTestUser(t, "alice@example.com")
		require.NoError(t, repo.Create(ctx, u))

		found, err := repo.FindByEmail(ctx, "Alice@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, u.ID(), found.ID())
	})

	t.Run("missing user", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))

		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("custom filters persist through update", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		u := newTestUser(t, "alice@example.com")
		require.NoError(t, repo.Create(ctx, u))

		f, err := u.AddFilter("Végétarien", "#10B981")
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, u))

		found, err := repo.FindByID(ctx, u.ID())
		require.NoError(t, err)
		require.Len(t, found.CustomFilters(), 1)
		assert.Equal(t, f.ID, found.CustomFilters()[0].ID)
		assert.Equal(t, "Végétarien", found.CustomFilters()[0].Name)
		assert.Equal(t, user.CustomFilterRow, found.CustomFilters()[0].Row)
		assert.Equal(t, "#10B981", found.CustomFilters()[0].Color)
	})

	t.Run("removing the last filter persists as empty", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		u := newTestUser(t, "alice@example.com")
		f, err := u.AddFilter("Rapide", "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, u))

		require.NoError(t, u.RemoveFilter(f.ID))
		require.NoError(t, repo.Update(ctx, u))

		found, err := repo.FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.Empty(t, found.CustomFilters())
	})

	t.Run("delete", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		u := newTestUser(t, "alice@example.com")
		require.NoError(t, repo.Create(ctx, u))

		require.NoError(t, repo.Delete(ctx, u.ID()))
		_, err := repo.FindByID(ctx, u.ID())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRecipeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and find roundtrip", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewRecipeRepository(db)
		owner := newTestUser(t, "alice@example.com")
		r := newTestRecipe(t, owner, "Crêpes")

		require.NoError(t, repo.Create(ctx, r))

		found, err := repo.FindByID(ctx, r.ID())
		require.NoError(t, err)
		assert.Equal(t, "Crêpes", found.Title())
		assert.Equal(t, owner.ID(), found.OwnerID())
		require.Len(t, found.Ingredients(), 1)
		assert.Equal(t, "farine", found.Ingredients()[0].Name)
		require.Len(t, found.Steps(), 1)
		assert.Equal(t, recipe.SourceManual, found.Source().Type)
	})

	t.Run("update persists cleared fields", func(t *testing.T) {
		repo := NewRecipeRepository(newTestDB(t))
		owner := newTestUser(t, "alice@example.com")
		r := newTestRecipe(t, owner, "Crêpes")
		r.SetImage("/api/uploads/x.jpg")
		require.NoError(t, repo.Create(ctx, r))

		require.NoError(t, r.ClearImage())
		require.NoError(t, repo.Update(ctx, r))

		found, err := repo.FindByID(ctx, r.ID())
		require.NoError(t, err)
		assert.Empty(t, found.ImageURL())
	})

	t.Run("FindByOwner only returns the owner's recipes", func(t *testing.T) {
		repo := NewRecipeRepository(newTestDB(t))
		alice := newTestUser(t, "alice@example.com")
		bob := newTestUser(t, "bob@example.com")

		require.NoError(t, repo.Create(ctx, newTestRecipe(t, alice, "Crêpes")))
		require.NoError(t, repo.Create(ctx, newTestRecipe(t, alice, "Tarte")))
		require.NoError(t, repo.Create(ctx, newTestRecipe(t, bob, "Gratin")))

		recipes, err := repo.FindByOwner(ctx, alice.ID())
		require.NoError(t, err)
		assert.Len(t, recipes, 2)
		for _, r := range recipes {
			assert.Equal(t, alice.ID(), r.OwnerID())
		}
	})

	t.Run("FindPublic filters visibility and owner", func(t *testing.T) {
		repo := NewRecipeRepository(newTestDB(t))
		alice := newTestUser(t, "alice@example.com")
		bob := newTestUser(t, "bob@example.com")

		pub := newTestRecipe(t, alice, "Crêpes")
		pub.SetVisibility(true)
		require.NoError(t, repo.Create(ctx, pub))

		priv := newTestRecipe(t, alice, "Secret")
		require.NoError(t, repo.Create(ctx, priv))

		bobPub := newTestRecipe(t, bob, "Gratin")
		bobPub.SetVisibility(true)
		require.NoError(t, repo.Create(ctx, bobPub))

		all, err := repo.FindPublic(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		aliceID := alice.ID()
		others, err := repo.FindPublic(ctx, &aliceID)
		require.NoError(t, err)
		require.Len(t, others, 1)
		assert.Equal(t, "Gratin", others[0].Title())
	})

	t.Run("HasDuplicate matches on title and source url per owner", func(t *testing.T) {
		repo := NewRecipeRepository(newTestDB(t))
		alice := newTestUser(t, "alice@example.com")
		bob := newTestUser(t, "bob@example.com")

		original, err := recipe.New(alice.ID(), alice.Name(), recipe.Content{Title: "Crêpes"},
			recipe.Source{Type: recipe.SourceURL, URL: "https://marmiton.org/crepes"})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, original))

		dup, err := repo.HasDuplicate(ctx, bob.ID(), original.Title(), original.Source().URL)
		require.NoError(t, err)
		assert.False(t, dup)

		cp, err := original.CopyFor(bob.ID(), bob.Name())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, cp))

		dup, err = repo.HasDuplicate(ctx, bob.ID(), original.Title(), original.Source().URL)
		require.NoError(t, err)
		assert.True(t, dup)

		// A different title with the same url is not a duplicate
		dup, err = repo.HasDuplicate(ctx, bob.ID(), "Galettes", original.Source().URL)
		require.NoError(t, err)
		assert.False(t, dup)
	})

	t.Run("RemoveTagFromOwner scrubs only that owner's recipes", func(t *testing.T) {
		repo := NewRecipeRepository(newTestDB(t))
		alice := newTestUser(t, "alice@example.com")
		bob := newTestUser(t, "bob@example.com")

		r1 := newTestRecipe(t, alice, "Crêpes")
		tags := []string{"desserts", "custom-1"}
		require.NoError(t, r1.ApplyUpdate(recipe.UpdatePatch{Tags: &tags}))
		require.NoError(t, repo.Create(ctx, r1))

		r2 := newTestRecipe(t, bob, "Gratin")
		bobTags := []string{"custom-1"}
		require.NoError(t, r2.ApplyUpdate(recipe.UpdatePatch{Tags: &bobTags}))
		require.NoError(t, repo.Create(ctx, r2))

		require.NoError(t, repo.RemoveTagFromOwner(ctx, alice.ID(), "custom-1"))

		found, err := repo.FindByID(ctx, r1.ID())
		require.NoError(t, err)
		assert.Equal(t, []string{"desserts"}, found.Tags())

		bobFound, err := repo.FindByID(ctx, r2.ID())
		require.NoError(t, err)
		assert.Equal(t, []string{"custom-1"}, bobFound.Tags())
	})

	t.Run("DeleteByOwner and counts", func(t *testing.T) {
		repo := NewRecipeRepository(newTestDB(t))
		alice := newTestUser(t, "alice@example.com")
		bob := newTestUser(t, "bob@example.com")

		pub := newTestRecipe(t, alice, "Crêpes")
		pub.SetVisibility(true)
		require.NoError(t, repo.Create(ctx, pub))
		require.NoError(t, repo.Create(ctx, newTestRecipe(t, alice, "Tarte")))
		require.NoError(t, repo.Create(ctx, newTestRecipe(t, bob, "Gratin")))

		total, err := repo.CountAll(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)

		public, err := repo.CountPublic(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, public)

		aliceCount, err := repo.CountByOwner(ctx, alice.ID())
		require.NoError(t, err)
		assert.EqualValues(t, 2, aliceCount)

		require.NoError(t, repo.DeleteByOwner(ctx, alice.ID()))
		total, err = repo.CountAll(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}
