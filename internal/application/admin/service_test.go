package admin

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/cookingcapture/api/internal/infrastructure/email"
	"github.com/cookingcapture/api/internal/infrastructure/persistence/gorm"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/cookingcapture/api/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	exportTo   string
	exportJSON string
	recipients []string
	failFor    map[string]bool
}

func (f *fakeMailer) SendDataExport(ctx context.Context, toEmail, name, exportJSON string) error {
	f.exportTo = toEmail
	f.exportJSON = exportJSON
	return nil
}

func (f *fakeMailer) Broadcast(ctx context.Context, recipients []string, subject, message string) email.BroadcastResult {
	f.recipients = recipients
	result := email.BroadcastResult{}
	for _, to := range recipients {
		if f.failFor[to] {
			result.Failed = append(result.Failed, to)
			continue
		}
		result.Sent++
	}
	return result
}

type fakeImageStore struct {
	removed []string
}

func (f *fakeImageStore) Save(ctx context.Context, recipeID uuid.UUID, data []byte, contentType string) (string, error) {
	return "/api/uploads/" + recipeID.String() + ".jpg", nil
}

func (f *fakeImageStore) Remove(ctx context.Context, publicURL string) error {
	f.removed = append(f.removed, publicURL)
	return nil
}

type testEnv struct {
	svc     *Service
	users   outbound.UserRepository
	recipes outbound.RecipeRepository
	mailer  *fakeMailer
	images  *fakeImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.NewTestDatabase()
	require.NoError(t, err)

	env := &testEnv{
		users:   gorm.NewUserRepository(db),
		recipes: gorm.NewRecipeRepository(db),
		mailer:  &fakeMailer{},
		images:  &fakeImageStore{},
	}
	env.svc = NewService(env.users, env.recipes, env.images, env.mailer, logger.NewNop())
	return env
}

func (e *testEnv) addUser(t *testing.T, emailAddr, name string) uuid.UUID {
	t.Helper()
	u, err := user.NewUser(emailAddr, name, "password123")
	require.NoError(t, err)
	require.NoError(t, e.users.Create(context.Background(), u))
	return u.ID()
}

func (e *testEnv) addRecipe(t *testing.T, ownerID uuid.UUID, name, title string, public bool) *recipe.Recipe {
	t.Helper()
	entity, err := recipe.New(ownerID, name, recipe.Content{Title: title}, recipe.Source{Type: recipe.SourceManual})
	require.NoError(t, err)
	entity.SetVisibility(public)
	require.NoError(t, e.recipes.Create(context.Background(), entity))
	return entity
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.addUser(t, "alice@example.com", "Alice")
	bob := env.addUser(t, "bob@example.com", "Bob")
	env.addRecipe(t, alice, "Alice", "Tarte", true)
	env.addRecipe(t, alice, "Alice", "Soupe", false)
	env.addRecipe(t, bob, "Bob", "Gratin", false)

	stats, err := env.svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(3), stats.Recipes)
	assert.Equal(t, int64(1), stats.PublicRecipes)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)

	alice := env.addUser(t, "alice@example.com", "Alice")
	env.addUser(t, "bob@example.com", "Bob")
	env.addRecipe(t, alice, "Alice", "Tarte", false)
	env.addRecipe(t, alice, "Alice", "Soupe", false)

	summaries, err := env.svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byEmail := make(map[string]UserSummary)
	for _, s := range summaries {
		byEmail[s.Email] = s
	}
	assert.Equal(t, int64(2), byEmail["alice@example.com"].RecipeCount)
	assert.Equal(t, int64(0), byEmail["bob@example.com"].RecipeCount)
}

func TestDeleteUserCleansUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.addUser(t, "alice@example.com", "Alice")
	entity := env.addRecipe(t, alice, "Alice", "Tarte", false)
	entity.SetImage("/api/uploads/" + entity.ID().String() + "_abcd1234.jpg")
	require.NoError(t, env.recipes.Update(ctx, entity))

	require.NoError(t, env.svc.DeleteUser(ctx, alice))

	assert.Contains(t, env.images.removed, entity.ImageURL())
	_, err := env.users.FindByID(ctx, alice)
	assert.Error(t, err)
	owned, err := env.recipes.FindByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestDeleteUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.DeleteUser(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeUserNotFound))
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	summary, err := env.svc.CreateUser(ctx, CreateUserCommand{
		Email:    "Carol@Example.com",
		Name:     "Carol",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", summary.Email)
	assert.Equal(t, int64(0), summary.RecipeCount)

	created, err := env.users.FindByID(ctx, summary.ID)
	require.NoError(t, err)
	assert.NoError(t, created.CheckPassword("password123"))

	// The address is already taken, whatever the casing
	_, err = env.svc.CreateUser(ctx, CreateUserCommand{
		Email:    "carol@example.com",
		Name:     "Caroline",
		Password: "password123",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeEmailAlreadyExists))
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "alice@example.com", "Alice")

	_, err := env.svc.UpdateUser(ctx, alice, UpdateUserCommand{})
	assert.True(t, apperrors.Is(err, apperrors.CodeEmptyUpdate))

	name := "Alicia"
	password := "nouveaumotdepasse"
	summary, err := env.svc.UpdateUser(ctx, alice, UpdateUserCommand{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", summary.Name)

	updated, err := env.users.FindByID(ctx, alice)
	require.NoError(t, err)
	assert.NoError(t, updated.CheckPassword("nouveaumotdepasse"))

	_, err = env.svc.UpdateUser(ctx, uuid.New(), UpdateUserCommand{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.CodeUserNotFound))
}

func TestGetUserExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.addUser(t, "alice@example.com", "Alice")
	env.addRecipe(t, alice, "Alice", "Tarte aux pommes", true)

	export, err := env.svc.GetUserExport(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", export.Email)
	require.Len(t, export.Recipes, 1)
	assert.Equal(t, "Tarte aux pommes", export.Recipes[0].Title)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestSendUserData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.addUser(t, "alice@example.com", "Alice")
	env.addRecipe(t, alice, "Alice", "Tarte aux pommes", true)

	require.NoError(t, env.svc.SendUserData(ctx, alice))

	assert.Equal(t, "alice@example.com", env.mailer.exportTo)

	var export DataExport
	require.NoError(t, json.Unmarshal([]byte(env.mailer.exportJSON), &export))
	assert.Equal(t, "alice@example.com", export.Email)
	require.Len(t, export.Recipes, 1)
	assert.Equal(t, "Tarte aux pommes", export.Recipes[0].Title)
}

func TestEmailUsers(t *testing.T) {
	env := newTestEnv(t)

	env.addUser(t, "alice@example.com", "Alice")
	env.addUser(t, "bob@example.com", "Bob")

	result, err := env.svc.EmailUsers(context.Background(), EmailCommand{
		RecipientEmails: []string{"bob@example.com"},
		Subject:         "Bienvenue",
		Message:         "Bonjour Bob",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bob@example.com"}, env.mailer.recipients)
	assert.Equal(t, 1, result.Sent)
	assert.Empty(t, result.Failed)
}

func TestBroadcastToAllUsers(t *testing.T) {
	env := newTestEnv(t)

	env.addUser(t, "alice@example.com", "Alice")
	env.addUser(t, "bob@example.com", "Bob")
	env.mailer.failFor = map[string]bool{"bob@example.com": true}

	result, err := env.svc.Broadcast(context.Background(), BroadcastCommand{
		Subject: "Nouveautés",
		Message: "Une nouvelle version est en ligne",
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, env.mailer.recipients)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, []string{"bob@example.com"}, result.Failed)
}
