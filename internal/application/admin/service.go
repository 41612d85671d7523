// Package admin provides the application layer for administration and
// personal data export.
package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/cookingcapture/api/internal/infrastructure/email"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mailer delivers data exports and announcements.
type Mailer interface {
	SendDataExport(ctx context.Context, toEmail, name, exportJSON string) error
	Broadcast(ctx context.Context, recipients []string, subject, message string) email.BroadcastResult
}

// Service implements administration use cases
type Service struct {
	userRepo   outbound.UserRepository
	recipeRepo outbound.RecipeRepository
	images     outbound.ImageStore
	mailer     Mailer
	logger     *zap.Logger
}

// NewService creates a new admin service
func NewService(
	userRepo outbound.UserRepository,
	recipeRepo outbound.RecipeRepository,
	images outbound.ImageStore,
	mailer Mailer,
	logger *zap.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
		images:     images,
		mailer:     mailer,
		logger:     logger.Named("admin-service"),
	}
}

// Stats summarizes the platform for the admin dashboard
type Stats struct {
	Users         int64 `json:"users"`
	Recipes       int64 `json:"recipes"`
	PublicRecipes int64 `json:"public_recipes"`
}

// GetStats returns platform-wide counts
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	users, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count users", err)
	}
	recipes, err := s.recipeRepo.CountAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count recipes", err)
	}
	public, err := s.recipeRepo.CountPublic(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count public recipes", err)
	}
	return &Stats{Users: users, Recipes: recipes, PublicRecipes: public}, nil
}

// UserSummary is one row of the admin user list
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	RecipeCount int64     `json:"recipe_count"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ListUsers returns every account with its recipe count
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	entities, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}

	summaries := make([]UserSummary, 0, len(entities))
	for _, entity := range entities {
		count, err := s.recipeRepo.CountByOwner(ctx, entity.ID())
		if err != nil {
			return nil, apperrors.NewDatabaseError("count recipes", err)
		}
		summaries = append(summaries, UserSummary{
			ID:          entity.ID(),
			Email:       entity.Email(),
			Name:        entity.Name(),
			RecipeCount: count,
			CreatedAt:   entity.CreatedAt(),
			LastLoginAt: entity.LastLoginAt(),
		})
	}
	return summaries, nil
}

// CreateUserCommand registers an account on a user's behalf
type CreateUserCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// CreateUser registers an account from the admin panel
func (s *Service) CreateUser(ctx context.Context, cmd CreateUserCommand) (*UserSummary, error) {
	if _, err := s.userRepo.FindByEmail(ctx, cmd.Email); err == nil {
		return nil, apperrors.NewEmailAlreadyExistsError()
	}

	entity, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Create(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	s.logger.Info("user created by admin", zap.String("user_id", entity.ID().String()))
	return &UserSummary{
		ID:        entity.ID(),
		Email:     entity.Email(),
		Name:      entity.Name(),
		CreatedAt: entity.CreatedAt(),
	}, nil
}

// UpdateUserCommand is an admin patch of an account. Nil fields are
// left untouched.
type UpdateUserCommand struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// UpdateUser renames an account or resets its password
func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, cmd UpdateUserCommand) (*UserSummary, error) {
	if cmd.Name == nil && cmd.Password == nil {
		return nil, apperrors.NewEmptyUpdateError()
	}

	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	if cmd.Name != nil {
		if err := entity.Rename(*cmd.Name); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Password != nil {
		if err := entity.UpdatePassword(*cmd.Password); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	if err := s.userRepo.Update(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("update user", err)
	}

	count, err := s.recipeRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count recipes", err)
	}
	return &UserSummary{
		ID:          entity.ID(),
		Email:       entity.Email(),
		Name:        entity.Name(),
		RecipeCount: count,
		CreatedAt:   entity.CreatedAt(),
		LastLoginAt: entity.LastLoginAt(),
	}, nil
}

// DeleteUser removes an account, its recipes and their image files
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return apperrors.NewUserNotFoundError(userID.String())
	}

	owned, err := s.recipeRepo.FindByOwner(ctx, userID)
	if err != nil {
		return apperrors.NewDatabaseError("list recipes", err)
	}
	for _, r := range owned {
		if r.ImageURL() == "" {
			continue
		}
		if err := s.images.Remove(ctx, r.ImageURL()); err != nil {
			s.logger.Warn("failed to remove image file",
				zap.String("recipe_id", r.ID().String()),
				zap.Error(err),
			)
		}
	}

	if err := s.recipeRepo.DeleteByOwner(ctx, userID); err != nil {
		return apperrors.NewDatabaseError("delete recipes", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return apperrors.NewDatabaseError("delete user", err)
	}

	s.logger.Info("user deleted by admin", zap.String("user_id", userID.String()))
	return nil
}

// exportedRecipe is the data-export shape of one recipe
type exportedRecipe struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	PrepTime    int                 `json:"prep_time"`
	CookTime    int                 `json:"cook_time"`
	Servings    int                 `json:"servings"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Steps       []recipe.Step       `json:"steps"`
	Tags        []string            `json:"tags"`
	SourceType  string              `json:"source_type"`
	SourceURL   string              `json:"source_url,omitempty"`
	IsPublic    bool                `json:"is_public"`
	CreatedAt   time.Time           `json:"created_at"`
}

// DataExport is the full personal data export of one account
type DataExport struct {
	Email      string           `json:"email"`
	Name       string           `json:"name"`
	CreatedAt  time.Time        `json:"created_at"`
	Recipes    []exportedRecipe `json:"recipes"`
	ExportedAt time.Time        `json:"exported_at"`
}

// GetUserExport builds the personal data export of one account, for
// download from the admin panel.
func (s *Service) GetUserExport(ctx context.Context, userID uuid.UUID) (*DataExport, error) {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	owned, err := s.recipeRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recipes", err)
	}

	export := DataExport{
		Email:      entity.Email(),
		Name:       entity.Name(),
		CreatedAt:  entity.CreatedAt(),
		Recipes:    make([]exportedRecipe, 0, len(owned)),
		ExportedAt: time.Now().UTC(),
	}
	for _, r := range owned {
		export.Recipes = append(export.Recipes, exportedRecipe{
			ID:          r.ID(),
			Title:       r.Title(),
			Description: r.Description(),
			PrepTime:    r.PrepTime(),
			CookTime:    r.CookTime(),
			Servings:    r.Servings(),
			Ingredients: r.Ingredients(),
			Steps:       r.Steps(),
			Tags:        r.Tags(),
			SourceType:  string(r.Source().Type),
			SourceURL:   r.Source().URL,
			IsPublic:    r.IsPublic(),
			CreatedAt:   r.CreatedAt(),
		})
	}
	return &export, nil
}

// SendUserData builds the personal data export and emails it to the
// account's address.
func (s *Service) SendUserData(ctx context.Context, userID uuid.UUID) error {
	export, err := s.GetUserExport(ctx, userID)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to encode data export")
	}

	if err := s.mailer.SendDataExport(ctx, export.Email, export.Name, string(payload)); err != nil {
		return apperrors.Wrap(err, "failed to send data export")
	}

	s.logger.Info("data export sent", zap.String("user_id", userID.String()))
	return nil
}

// BroadcastCommand is an announcement to every account
type BroadcastCommand struct {
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1"`
}

// Broadcast emails an announcement to every registered user
func (s *Service) Broadcast(ctx context.Context, cmd BroadcastCommand) (*email.BroadcastResult, error) {
	entities, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}

	recipients := make([]string, 0, len(entities))
	for _, entity := range entities {
		recipients = append(recipients, entity.Email())
	}

	result := s.mailer.Broadcast(ctx, recipients, cmd.Subject, cmd.Message)

	s.logger.Info("broadcast finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", len(result.Failed)),
	)
	return &result, nil
}

// EmailCommand is an announcement to chosen recipients
type EmailCommand struct {
	RecipientEmails []string `json:"recipient_emails" validate:"required,min=1,dive,email"`
	Subject         string   `json:"subject" validate:"required,min=1,max=200"`
	Message         string   `json:"message" validate:"required,min=1"`
}

// EmailUsers emails an announcement to the given recipients
func (s *Service) EmailUsers(ctx context.Context, cmd EmailCommand) (*email.BroadcastResult, error) {
	result := s.mailer.Broadcast(ctx, cmd.RecipientEmails, cmd.Subject, cmd.Message)

	s.logger.Info("targeted email finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", len(result.Failed)),
	)
	return &result, nil
}
