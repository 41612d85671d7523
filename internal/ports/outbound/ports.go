// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/google/uuid"
)

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	Create(ctx context.Context, recipe *recipe.Recipe) error
	Update(ctx context.Context, recipe *recipe.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)

	// FindByOwner returns all of a user's recipes, newest first.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*recipe.Recipe, error)

	// FindPublic returns public recipes, newest first, excluding those
	// owned by excludeOwner when it is non-nil.
	FindPublic(ctx context.Context, excludeOwner *uuid.UUID) ([]*recipe.Recipe, error)

	// HasDuplicate reports whether the owner already has a recipe with
	// the same title and source URL, used to reject repeated copies.
	HasDuplicate(ctx context.Context, ownerID uuid.UUID, title, sourceURL string) (bool, error)

	// RemoveTagFromOwner detaches a tag id from every recipe of the
	// owner, used when a custom filter is deleted.
	RemoveTagFromOwner(ctx context.Context, ownerID uuid.UUID, tagID string) error

	// DeleteByOwner removes all recipes of a user (account deletion).
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error

	// CountAll and CountPublic back the admin statistics view.
	CountAll(ctx context.Context) (int64, error)
	CountPublic(ctx context.Context) (int64, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindAll(ctx context.Context) ([]*user.User, error)
	CountAll(ctx context.Context) (int64, error)
}

// RecipeExtractor turns free-form content into structured recipe
// fields. Implementations must either return a complete Content or an
// error; partial results are not allowed.
type RecipeExtractor interface {
	// ExtractFromText parses recipe text (from a webpage, a pasted
	// block, or a document) into structured content.
	ExtractFromText(ctx context.Context, text string) (*recipe.Content, error)

	// ExtractFromImage parses a photographed or scanned recipe.
	// imageData is the raw bytes; mimeType its content type.
	ExtractFromImage(ctx context.Context, imageData []byte, mimeType string) (*recipe.Content, error)
}

// PageFetcher retrieves webpage HTML on behalf of the capture flow.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)
}

// EmailSender delivers transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// ImageStore persists recipe photos and serves back their public URLs.
type ImageStore interface {
	// Save processes and stores a recipe photo, returning its public
	// URL. Any previous photo for the recipe is replaced.
	Save(ctx context.Context, recipeID uuid.UUID, data []byte, contentType string) (string, error)

	// Remove deletes the stored photo a public URL points at.
	Remove(ctx context.Context, publicURL string) error
}
