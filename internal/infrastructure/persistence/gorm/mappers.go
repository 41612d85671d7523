// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:            u.ID(),
		Email:         u.Email(),
		Name:          u.Name(),
		PasswordHash:  u.PasswordHash(),
		CustomFilters: FilterSlice(u.CustomFilters()),
		CreatedAt:     u.CreatedAt(),
		UpdatedAt:     u.UpdatedAt(),
		LastLoginAt:   u.LastLoginAt(),
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(model *UserModel) *user.User {
	return user.Reconstruct(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		[]user.Filter(model.CustomFilters),
		model.CreatedAt,
		model.UpdatedAt,
		model.LastLoginAt,
	)
}

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:              r.ID(),
		OwnerID:         r.OwnerID(),
		UserName:        r.UserName(),
		Title:           r.Title(),
		Description:     r.Description(),
		PrepTimeMinutes: r.PrepTime(),
		CookTimeMinutes: r.CookTime(),
		Servings:        r.Servings(),
		Ingredients:     IngredientSlice(r.Ingredients()),
		Steps:           StepSlice(r.Steps()),
		Tags:            StringSlice(r.Tags()),
		SourceType:      string(r.Source().Type),
		SourceURL:       r.Source().URL,
		ImageURL:        r.ImageURL(),
		IsPublic:        r.IsPublic(),
		CopiedFrom:      r.CopiedFrom(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(model *RecipeModel) *recipe.Recipe {
	content := recipe.Content{
		Title:       model.Title,
		Description: model.Description,
		PrepTime:    model.PrepTimeMinutes,
		CookTime:    model.CookTimeMinutes,
		Servings:    model.Servings,
		Ingredients: []recipe.Ingredient(model.Ingredients),
		Steps:       []recipe.Step(model.Steps),
	}

	return recipe.Reconstruct(
		model.ID,
		model.OwnerID,
		model.UserName,
		content,
		[]string(model.Tags),
		recipe.Source{Type: recipe.SourceType(model.SourceType), URL: model.SourceURL},
		model.ImageURL,
		model.IsPublic,
		model.CopiedFrom,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
