package gorm

import (
	"context"
	"errors"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/ports/outbound"
	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gormlib.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gormlib.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, entity *recipe.Recipe) error {
	model := RecipeToModel(entity)

	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return result.Error
	}
	return nil
}

// Update saves an existing recipe
func (r *RecipeRepository) Update(ctx context.Context, entity *recipe.Recipe) error {
	model := RecipeToModel(entity)

	// Save with Select("*") so that zeroed fields (cleared image,
	// emptied tags) are written as well.
	result := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrNotFound
	}
	return nil
}

// Delete removes a recipe by ID
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrNotFound
	}
	return nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gormlib.ErrRecordNotFound) {
			return nil, recipe.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// FindByOwner returns all of a user's recipes, newest first
func (r *RecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return modelsToRecipes(models), nil
}

// FindPublic returns public recipes, newest first, excluding those
// owned by excludeOwner when it is non-nil
func (r *RecipeRepository) FindPublic(ctx context.Context, excludeOwner *uuid.UUID) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	query := r.db.WithContext(ctx).Where("is_public = ?", true)
	if excludeOwner != nil {
		query = query.Where("owner_id != ?", *excludeOwner)
	}

	result := query.Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return modelsToRecipes(models), nil
}

// HasDuplicate reports whether the owner already has a recipe with the
// same title and source URL
func (r *RecipeRepository) HasDuplicate(ctx context.Context, ownerID uuid.UUID, title, sourceURL string) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("owner_id = ? AND title = ? AND source_url = ?", ownerID, title, sourceURL).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// RemoveTagFromOwner detaches a tag id from every recipe of the owner
func (r *RecipeRepository) RemoveTagFromOwner(ctx context.Context, ownerID uuid.UUID, tagID string) error {
	var models []RecipeModel

	// Tags live in a JSON column, so the filtering happens here rather
	// than in SQL. Owners have few recipes; this stays cheap.
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&models)
	if result.Error != nil {
		return result.Error
	}

	for i := range models {
		kept := make(StringSlice, 0, len(models[i].Tags))
		removed := false
		for _, t := range models[i].Tags {
			if t == tagID {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		if !removed {
			continue
		}

		update := r.db.WithContext(ctx).Model(&RecipeModel{}).
			Where("id = ?", models[i].ID).
			Update("tags", kept)
		if update.Error != nil {
			return update.Error
		}
	}

	return nil
}

// DeleteByOwner removes all recipes of a user
func (r *RecipeRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "owner_id = ?", ownerID)
	return result.Error
}

// CountAll returns the total number of recipes
func (r *RecipeRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&RecipeModel{}).Count(&count)
	return count, result.Error
}

// CountPublic returns the number of public recipes
func (r *RecipeRepository) CountPublic(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("is_public = ?", true).
		Count(&count)
	return count, result.Error
}

// CountByOwner returns the number of recipes a user owns
func (r *RecipeRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count)
	return count, result.Error
}

func modelsToRecipes(models []RecipeModel) []*recipe.Recipe {
	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}
	return recipes
}
