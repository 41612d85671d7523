package email

import (
	"context"
	"errors"
	"testing"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/ports/outbound"
	"github.com/cookingcapture/api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records sent messages and fails listed recipients.
type fakeSender struct {
	sent    []outbound.EmailMessage
	failFor map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, msg outbound.EmailMessage) error {
	if len(msg.To) == 1 && f.failFor[msg.To[0]] {
		return errors.New("delivery refused")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestNotifier(sender outbound.EmailSender) *Notifier {
	cfg := &config.Config{}
	cfg.Admin.Email = "admin@example.com"
	cfg.App.FrontendURL = "https://app.example.com/"
	return NewNotifier(sender, cfg, logger.NewNop())
}

func TestSendPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	require.NoError(t, n.SendPasswordReset(context.Background(), "alice@example.com", "Alice", "tok123"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, msg.To)
	assert.Equal(t, "Réinitialisation de votre mot de passe", msg.Subject)
	assert.Contains(t, msg.HTML, "https://app.example.com/reset-password?token=tok123")
	assert.Contains(t, msg.HTML, "Alice")
}

func TestSendContactMessage(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	require.NoError(t, n.SendContactMessage(context.Background(), "Bob", "bob@example.com", "", "J'adore <votre> appli"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Equal(t, "Contact : Bob", msg.Subject)
	assert.Equal(t, "bob@example.com", msg.ReplyTo)
	// User input is escaped
	assert.Contains(t, msg.HTML, "&lt;votre&gt;")
}

func TestSendContactMessageWithSubject(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	require.NoError(t, n.SendContactMessage(context.Background(),
		"Bob", "bob@example.com", "Problème d'extraction", "Une recette ne passe pas"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Contact : Problème d'extraction", msg.Subject)
	assert.Contains(t, msg.HTML, "Problème d&#39;extraction")
}

func TestSendDataExport(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	require.NoError(t, n.SendDataExport(context.Background(), "alice@example.com", "Alice", `{"recipes":[]}`))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTML, "recipes")
}

func TestSendRecipe(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	err := n.SendRecipe(context.Background(), "ami@example.com", RecipeSummary{
		Title:       "Tarte aux pommes",
		Description: "Une tarte classique",
		PrepTime:    20,
		CookTime:    40,
		Servings:    6,
		Ingredients: []recipe.Ingredient{{Name: "pommes", Quantity: "4"}},
		Steps:       []recipe.Step{{StepNumber: 1, Instruction: "Préchauffer le four"}},
		UserName:    "Alice",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"ami@example.com"}, msg.To)
	assert.Equal(t, "Recette : Tarte aux pommes", msg.Subject)
	assert.Contains(t, msg.HTML, "4  pommes")
	assert.Contains(t, msg.HTML, "Préchauffer le four")
}

func TestSendRecipeRequest(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	err := n.SendRecipeRequest(context.Background(), RecipeRequest{
		RecipeTitle: "Tarte aux pommes",
		OwnerName:   "Alice",
		FromName:    "Léa",
		FromEmail:   "lea@example.com",
		Message:     "Elle a l'air délicieuse",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Equal(t, "lea@example.com", msg.ReplyTo)
	assert.Contains(t, msg.HTML, "Alice")
}

func TestBroadcastCollectsFailures(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{"bad@example.com": true}}
	n := newTestNotifier(sender)

	result := n.Broadcast(context.Background(),
		[]string{"a@example.com", "bad@example.com", "c@example.com"},
		"Nouveautés", "Une nouvelle fonctionnalité est disponible")

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, []string{"bad@example.com"}, result.Failed)

	// Every recipient gets their own message
	require.Len(t, sender.sent, 2)
	for _, msg := range sender.sent {
		assert.Len(t, msg.To, 1)
	}
}
