// Package recipe contains the core domain logic for captured recipes.
// This follows Domain-Driven Design principles with rich domain models.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recipe represents a captured recipe owned by a user.
type Recipe struct {
	id      uuid.UUID
	ownerID uuid.UUID

	// Denormalized owner display name, shown on public listings
	userName string

	title       string
	description string
	prepTime    int // minutes
	cookTime    int // minutes
	servings    int
	ingredients []Ingredient
	steps       []Step
	tags        []string

	source    Source
	imageURL  string
	isPublic  bool
	copiedFrom *uuid.UUID

	createdAt time.Time
	updatedAt time.Time
}

// New creates a recipe from extracted or manual content.
func New(ownerID uuid.UUID, userName string, content Content, source Source) (*Recipe, error) {
	title := strings.TrimSpace(content.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Recipe{
		id:          uuid.New(),
		ownerID:     ownerID,
		userName:    userName,
		title:       title,
		description: content.Description,
		prepTime:    content.PrepTime,
		cookTime:    content.CookTime,
		servings:    content.Servings,
		ingredients: content.Ingredients,
		steps:       content.Steps,
		tags:        []string{},
		source:      source,
		// Recipes captured from a public webpage are shared back publicly
		isPublic:  source.Type == SourceURL,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a recipe from persisted state. It bypasses
// creation validation because stored rows are assumed consistent.
func Reconstruct(
	id, ownerID uuid.UUID,
	userName string,
	content Content,
	tags []string,
	source Source,
	imageURL string,
	isPublic bool,
	copiedFrom *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Recipe {
	if tags == nil {
		tags = []string{}
	}
	return &Recipe{
		id:          id,
		ownerID:     ownerID,
		userName:    userName,
		title:       content.Title,
		description: content.Description,
		prepTime:    content.PrepTime,
		cookTime:    content.CookTime,
		servings:    content.Servings,
		ingredients: content.Ingredients,
		steps:       content.Steps,
		tags:        tags,
		source:      source,
		imageURL:    imageURL,
		isPublic:    isPublic,
		copiedFrom:  copiedFrom,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() uuid.UUID { return r.id }

// OwnerID returns the owning user's identifier
func (r *Recipe) OwnerID() uuid.UUID { return r.ownerID }

// UserName returns the owner's display name as captured at write time
func (r *Recipe) UserName() string { return r.userName }

// Title returns the recipe's title
func (r *Recipe) Title() string { return r.title }

// Description returns the recipe's description
func (r *Recipe) Description() string { return r.description }

// PrepTime returns the preparation time in minutes
func (r *Recipe) PrepTime() int { return r.prepTime }

// CookTime returns the cooking time in minutes
func (r *Recipe) CookTime() int { return r.cookTime }

// Servings returns the number of servings
func (r *Recipe) Servings() int { return r.servings }

// Ingredients returns the recipe's ingredients
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }

// Steps returns the ordered preparation steps
func (r *Recipe) Steps() []Step { return r.steps }

// Tags returns the filter tag identifiers attached to the recipe
func (r *Recipe) Tags() []string { return r.tags }

// Source returns where the recipe was captured from
func (r *Recipe) Source() Source { return r.source }

// ImageURL returns the public URL of the recipe photo, empty if none
func (r *Recipe) ImageURL() string { return r.imageURL }

// IsPublic reports whether the recipe is shared publicly
func (r *Recipe) IsPublic() bool { return r.isPublic }

// CopiedFrom returns the id of the public recipe this one was copied
// from, nil for originals.
func (r *Recipe) CopiedFrom() *uuid.UUID { return r.copiedFrom }

// CreatedAt returns when the recipe was captured
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the recipe was last modified
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }

// Content returns the editable recipe fields as a value object.
func (r *Recipe) Content() Content {
	return Content{
		Title:       r.title,
		Description: r.description,
		PrepTime:    r.prepTime,
		CookTime:    r.cookTime,
		Servings:    r.servings,
		Ingredients: r.ingredients,
		Steps:       r.steps,
	}
}

// ApplyUpdate applies the non-nil fields of the patch. It returns
// ErrEmptyUpdate when the patch carries nothing.
func (r *Recipe) ApplyUpdate(patch UpdatePatch) error {
	if patch.IsEmpty() {
		return ErrEmptyUpdate
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ErrTitleRequired
		}
		r.title = title
	}
	if patch.Description != nil {
		r.description = *patch.Description
	}
	if patch.PrepTime != nil {
		r.prepTime = *patch.PrepTime
	}
	if patch.CookTime != nil {
		r.cookTime = *patch.CookTime
	}
	if patch.Servings != nil {
		r.servings = *patch.Servings
	}
	if patch.Ingredients != nil {
		r.ingredients = *patch.Ingredients
	}
	if patch.Steps != nil {
		r.steps = *patch.Steps
	}
	if patch.Tags != nil {
		r.tags = *patch.Tags
	}
	if patch.IsPublic != nil {
		r.SetVisibility(*patch.IsPublic)
	}

	r.updatedAt = time.Now()
	return nil
}

// SetVisibility publishes or unpublishes the recipe. URL-sourced
// recipes stay public regardless of the requested value.
func (r *Recipe) SetVisibility(public bool) {
	if r.source.Type == SourceURL {
		public = true
	}
	r.isPublic = public
	r.updatedAt = time.Now()
}

// SetImage records the public URL of the recipe photo, replacing any
// previous one.
func (r *Recipe) SetImage(url string) {
	r.imageURL = url
	r.updatedAt = time.Now()
}

// ClearImage removes the recipe photo reference.
func (r *Recipe) ClearImage() error {
	if r.imageURL == "" {
		return ErrNoImage
	}
	r.imageURL = ""
	r.updatedAt = time.Now()
	return nil
}

// RemoveTag detaches a tag identifier if present.
func (r *Recipe) RemoveTag(tagID string) {
	kept := r.tags[:0]
	for _, t := range r.tags {
		if t != tagID {
			kept = append(kept, t)
		}
	}
	if len(kept) != len(r.tags) {
		r.tags = kept
		r.updatedAt = time.Now()
	}
}

// IsOwnedBy reports whether the given user owns the recipe.
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.ownerID == userID
}

// CopyFor creates a private copy of a public recipe for another user.
// The copy keeps the content and the original's source URL but starts
// with no tags, no image and a reference back to the original.
func (r *Recipe) CopyFor(ownerID uuid.UUID, userName string) (*Recipe, error) {
	if !r.isPublic {
		return nil, ErrNotPublic
	}

	now := time.Now()
	original := r.id
	return &Recipe{
		id:          uuid.New(),
		ownerID:     ownerID,
		userName:    userName,
		title:       r.title,
		description: r.description,
		prepTime:    r.prepTime,
		cookTime:    r.cookTime,
		servings:    r.servings,
		ingredients: append([]Ingredient(nil), r.ingredients...),
		steps:       append([]Step(nil), r.steps...),
		tags:        []string{},
		source:      Source{Type: SourceCopy, URL: r.source.URL},
		copiedFrom:  &original,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}
