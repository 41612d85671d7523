package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/cookingcapture/api/internal/ports/outbound"
	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gormlib.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gormlib.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, entity *user.User) error {
	model := UserToModel(entity)

	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return result.Error
	}
	return nil
}

// Update saves an existing user
func (r *UserRepository) Update(ctx context.Context, entity *user.User) error {
	model := UserToModel(entity)

	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gormlib.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(email))
	if result.Error != nil {
		if errors.Is(result.Error, gormlib.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// FindAll returns every user, oldest first
func (r *UserRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	var models []UserModel

	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = ModelToUser(&models[i])
	}
	return users, nil
}

// CountAll returns the total number of users
func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&UserModel{}).Count(&count)
	return count, result.Error
}
