// Package user provides the application layer for accounts, sessions
// and filter tags.
package user

import (
	"context"
	"time"

	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/cookingcapture/api/internal/infrastructure/security"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResetMailer delivers password-reset email.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, toEmail, name, token string) error
}

// Service implements account use cases
type Service struct {
	userRepo   outbound.UserRepository
	recipeRepo outbound.RecipeRepository
	tokens     *security.TokenService
	mailer     ResetMailer
	logger     *zap.Logger
}

// NewService creates a new user service
func NewService(
	userRepo outbound.UserRepository,
	recipeRepo outbound.RecipeRepository,
	tokens *security.TokenService,
	mailer ResetMailer,
	logger *zap.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
		tokens:     tokens,
		mailer:     mailer,
		logger:     logger.Named("user-service"),
	}
}

// RegisterCommand contains registration data
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginCommand contains login data
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDTO represents user data returned to clients
type UserDTO struct {
	ID            uuid.UUID     `json:"id"`
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	CustomFilters []user.Filter `json:"custom_filters"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AuthResponse contains the session token and the authenticated user
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// Register creates a new account and opens a session
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*AuthResponse, error) {
	if existing, err := s.userRepo.FindByEmail(ctx, cmd.Email); err == nil && existing != nil {
		return nil, apperrors.NewEmailAlreadyExistsError()
	}

	newUser, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	token, err := s.tokens.IssueSessionToken(newUser.ID(), newUser.Email())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue session token")
	}

	s.logger.Info("user registered",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)

	return &AuthResponse{Token: token, User: entityToDTO(newUser)}, nil
}

// Login authenticates a user and opens a session
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*AuthResponse, error) {
	entity, err := s.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if err := entity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("invalid password attempt", zap.String("email", cmd.Email))
		return nil, apperrors.NewInvalidCredentialsError()
	}

	entity.RecordLogin()
	if err := s.userRepo.Update(ctx, entity); err != nil {
		s.logger.Error("failed to record login", zap.Error(err))
	}

	token, err := s.tokens.IssueSessionToken(entity.ID(), entity.Email())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue session token")
	}

	s.logger.Info("user logged in", zap.String("user_id", entity.ID().String()))

	return &AuthResponse{Token: token, User: entityToDTO(entity)}, nil
}

// GetProfile returns the user's account data
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	dto := entityToDTO(entity)
	return &dto, nil
}

// UpdateNameCommand renames the account
type UpdateNameCommand struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// UpdateName changes the user's display name
func (s *Service) UpdateName(ctx context.Context, userID uuid.UUID, cmd UpdateNameCommand) (*UserDTO, error) {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	if err := entity.Rename(cmd.Name); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Update(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("update user", err)
	}

	dto := entityToDTO(entity)
	return &dto, nil
}

// ChangePasswordCommand carries a password change
type ChangePasswordCommand struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword changes the password of a logged-in user
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, cmd ChangePasswordCommand) error {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.NewUserNotFoundError(userID.String())
	}

	if err := entity.CheckPassword(cmd.CurrentPassword); err != nil {
		return apperrors.NewInvalidCredentialsError()
	}
	if err := entity.UpdatePassword(cmd.NewPassword); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Update(ctx, entity); err != nil {
		return apperrors.NewDatabaseError("update user", err)
	}

	s.logger.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

// ForgotPassword starts the reset flow. It always succeeds from the
// caller's point of view so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	entity, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	token, err := s.tokens.IssueResetToken(entity.ID(), entity.Email())
	if err != nil {
		s.logger.Error("failed to issue reset token", zap.Error(err))
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, entity.Email(), entity.Name(), token); err != nil {
		s.logger.Error("failed to send reset email", zap.Error(err))
	}
	return nil
}

// ResetPasswordCommand carries a token-based password reset
type ResetPasswordCommand struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword completes the reset flow with a valid reset token
func (s *Service) ResetPassword(ctx context.Context, cmd ResetPasswordCommand) error {
	claims, err := s.tokens.VerifyResetToken(cmd.Token)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return apperrors.NewTokenInvalidError()
	}

	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.NewUserNotFoundError(claims.UserID)
	}

	if err := entity.UpdatePassword(cmd.NewPassword); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Update(ctx, entity); err != nil {
		return apperrors.NewDatabaseError("update user", err)
	}

	s.logger.Info("password reset completed", zap.String("user_id", claims.UserID))
	return nil
}

// DeleteAccount removes the user and everything they own
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return apperrors.NewUserNotFoundError(userID.String())
	}

	if err := s.recipeRepo.DeleteByOwner(ctx, userID); err != nil {
		return apperrors.NewDatabaseError("delete recipes", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return apperrors.NewDatabaseError("delete user", err)
	}

	s.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

// ListFilters returns the default catalog plus the user's custom
// filters.
func (s *Service) ListFilters(ctx context.Context, userID uuid.UUID) ([]user.Filter, []user.Filter, error) {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, apperrors.NewUserNotFoundError(userID.String())
	}
	return user.DefaultFilters(), entity.CustomFilters(), nil
}

// FilterCommand names a filter and optionally picks its color
type FilterCommand struct {
	Name  string `json:"name" validate:"required,min=1,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// CreateFilter adds a custom filter tag
func (s *Service) CreateFilter(ctx context.Context, userID uuid.UUID, cmd FilterCommand) (*user.Filter, error) {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	filter, err := entity.AddFilter(cmd.Name, cmd.Color)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Update(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("update user", err)
	}

	return &filter, nil
}

// RenameFilter changes a custom filter's name
func (s *Service) RenameFilter(ctx context.Context, userID uuid.UUID, filterID string, cmd FilterCommand) error {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.NewUserNotFoundError(userID.String())
	}

	if err := entity.RenameFilter(filterID, cmd.Name, cmd.Color); err != nil {
		if err == user.ErrFilterNotFound {
			return apperrors.NewFilterNotFoundError(filterID)
		}
		return apperrors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Update(ctx, entity); err != nil {
		return apperrors.NewDatabaseError("update user", err)
	}
	return nil
}

// DeleteFilter removes a custom filter and detaches it from every
// recipe of the user.
func (s *Service) DeleteFilter(ctx context.Context, userID uuid.UUID, filterID string) error {
	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.NewUserNotFoundError(userID.String())
	}

	if err := entity.RemoveFilter(filterID); err != nil {
		return apperrors.NewFilterNotFoundError(filterID)
	}
	if err := s.userRepo.Update(ctx, entity); err != nil {
		return apperrors.NewDatabaseError("update user", err)
	}

	if err := s.recipeRepo.RemoveTagFromOwner(ctx, userID, filterID); err != nil {
		return apperrors.NewDatabaseError("detach tag", err)
	}

	s.logger.Info("custom filter deleted",
		zap.String("user_id", userID.String()),
		zap.String("filter_id", filterID),
	)
	return nil
}

func entityToDTO(entity *user.User) UserDTO {
	return UserDTO{
		ID:            entity.ID(),
		Email:         entity.Email(),
		Name:          entity.Name(),
		CustomFilters: entity.CustomFilters(),
		CreatedAt:     entity.CreatedAt(),
	}
}
