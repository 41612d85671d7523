// Package recipe provides the application layer for recipe capture
// and management.
package recipe

import (
	"context"
	"time"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/infrastructure/content"
	"github.com/cookingcapture/api/internal/infrastructure/email"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShareMailer delivers recipe email: full recipes to a recipient, and
// visitor requests for a recipe to the admin.
type ShareMailer interface {
	SendRecipe(ctx context.Context, toEmail string, summary email.RecipeSummary) error
	SendRecipeRequest(ctx context.Context, req email.RecipeRequest) error
}

// Service implements recipe use cases
type Service struct {
	recipeRepo outbound.RecipeRepository
	userRepo   outbound.UserRepository
	extractor  outbound.RecipeExtractor
	fetcher    outbound.PageFetcher
	images     outbound.ImageStore
	mailer     ShareMailer
	maxUpload  int64
	logger     *zap.Logger
}

// NewService creates a new recipe service
func NewService(
	recipeRepo outbound.RecipeRepository,
	userRepo outbound.UserRepository,
	extractor outbound.RecipeExtractor,
	fetcher outbound.PageFetcher,
	images outbound.ImageStore,
	mailer ShareMailer,
	maxUpload int64,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
		extractor:  extractor,
		fetcher:    fetcher,
		images:     images,
		mailer:     mailer,
		maxUpload:  maxUpload,
		logger:     logger.Named("recipe-service"),
	}
}

// RecipeDTO represents recipe data returned to clients
type RecipeDTO struct {
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
	ImageURL    string              `json:"image_url,omitempty"`
	IsPublic    bool                `json:"is_public"`
	CopiedFrom  *uuid.UUID          `json:"copied_from,omitempty"`
	UserName    string              `json:"user_name"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CaptureFromURL fetches a webpage and extracts a recipe from it
func (s *Service) CaptureFromURL(ctx context.Context, userID uuid.UUID, url string) (*RecipeDTO, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	text, err := content.NormalizeHTML(html)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(err)
	}

	extracted, err := s.extractor.ExtractFromText(ctx, text)
	if err != nil {
		return nil, err
	}

	return s.create(ctx, owner.ID(), owner.Name(), *extracted, recipe.Source{Type: recipe.SourceURL, URL: url})
}

// CaptureFromText extracts a recipe from a pasted block of text
func (s *Service) CaptureFromText(ctx context.Context, userID uuid.UUID, text string) (*RecipeDTO, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	extracted, err := s.extractor.ExtractFromText(ctx, content.Truncate(text))
	if err != nil {
		return nil, err
	}

	return s.create(ctx, owner.ID(), owner.Name(), *extracted, recipe.Source{Type: recipe.SourceText})
}

// imageTypes are uploads routed through vision extraction rather than
// document text extraction.
var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// CaptureFromUpload extracts a recipe from an uploaded document or a
// photographed recipe.
func (s *Service) CaptureFromUpload(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (*RecipeDTO, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	if int64(len(data)) > s.maxUpload {
		return nil, apperrors.NewFileTooLargeError(s.maxUpload)
	}

	var extracted *recipe.Content
	source := recipe.Source{Type: recipe.SourceDocument}

	if imageTypes[contentType] {
		source.Type = recipe.SourceImage
		extracted, err = s.extractor.ExtractFromImage(ctx, data, contentType)
	} else {
		var text string
		text, err = content.ExtractDocumentText(data, contentType)
		if err != nil {
			return nil, err
		}
		extracted, err = s.extractor.ExtractFromText(ctx, text)
	}
	if err != nil {
		return nil, err
	}

	return s.create(ctx, owner.ID(), owner.Name(), *extracted, source)
}

// CreateManual creates a recipe directly from user input
func (s *Service) CreateManual(ctx context.Context, userID uuid.UUID, recipeContent recipe.Content, tags []string) (*RecipeDTO, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	if err := validateTags(owner.HasFilter, tags); err != nil {
		return nil, err
	}

	dto, err := s.create(ctx, owner.ID(), owner.Name(), recipeContent, recipe.Source{Type: recipe.SourceManual})
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		entity, err := s.recipeRepo.FindByID(ctx, dto.ID)
		if err != nil {
			return nil, apperrors.NewDatabaseError("reload recipe", err)
		}
		if err := entity.ApplyUpdate(recipe.UpdatePatch{Tags: &tags}); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if err := s.recipeRepo.Update(ctx, entity); err != nil {
			return nil, apperrors.NewDatabaseError("update recipe", err)
		}
		*dto = entityToDTO(entity)
	}

	return dto, nil
}

func (s *Service) create(ctx context.Context, ownerID uuid.UUID, ownerName string, recipeContent recipe.Content, source recipe.Source) (*RecipeDTO, error) {
	entity, err := recipe.New(ownerID, ownerName, recipeContent, source)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.recipeRepo.Create(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("recipe captured",
		zap.String("recipe_id", entity.ID().String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("source", string(source.Type)),
	)

	dto := entityToDTO(entity)
	return &dto, nil
}

// List returns all of the user's recipes, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]RecipeDTO, error) {
	entities, err := s.recipeRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recipes", err)
	}
	return entitiesToDTOs(entities), nil
}

// Get returns a recipe the user owns, or any public recipe
func (s *Service) Get(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error) {
	entity, err := s.findVisible(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	dto := entityToDTO(entity)
	return &dto, nil
}

// UpdatePatch carries a partial recipe update from the API layer.
type UpdatePatch = recipe.UpdatePatch

// Update applies a partial update to an owned recipe
func (s *Service) Update(ctx context.Context, userID, recipeID uuid.UUID, patch UpdatePatch) (*RecipeDTO, error) {
	entity, err := s.findOwned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	if patch.Tags != nil {
		owner, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return nil, apperrors.NewUserNotFoundError(userID.String())
		}
		if err := validateTags(owner.HasFilter, *patch.Tags); err != nil {
			return nil, err
		}
	}

	if err := entity.ApplyUpdate(patch); err != nil {
		switch err {
		case recipe.ErrEmptyUpdate:
			return nil, apperrors.NewEmptyUpdateError()
		default:
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	if err := s.recipeRepo.Update(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}

	dto := entityToDTO(entity)
	return &dto, nil
}

// Delete removes an owned recipe and its stored image
func (s *Service) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	entity, err := s.findOwned(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	if entity.ImageURL() != "" {
		if err := s.images.Remove(ctx, entity.ImageURL()); err != nil {
			s.logger.Warn("failed to remove recipe image file", zap.Error(err))
		}
	}

	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return apperrors.NewDatabaseError("delete recipe", err)
	}

	s.logger.Info("recipe deleted", zap.String("recipe_id", recipeID.String()))
	return nil
}

// ListPublicRecent returns the public recipe feed, newest first. The
// feed is browsable without authentication.
func (s *Service) ListPublicRecent(ctx context.Context) ([]RecipeDTO, error) {
	entities, err := s.recipeRepo.FindPublic(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list public recipes", err)
	}
	return entitiesToDTOs(entities), nil
}

// GetPublic returns a public recipe for anonymous viewing. Private
// recipes are refused, not hidden.
func (s *Service) GetPublic(ctx context.Context, recipeID uuid.UUID) (*RecipeDTO, error) {
	entity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewRecipeNotFoundError(recipeID.String())
	}
	if !entity.IsPublic() {
		return nil, apperrors.NewForbiddenError("This recipe is not public")
	}
	dto := entityToDTO(entity)
	return &dto, nil
}

// Copy duplicates a public recipe into the user's collection. Copying
// is refused when the user already has a recipe with the same title
// and source URL.
func (s *Service) Copy(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUserNotFoundError(userID.String())
	}

	original, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewRecipeNotFoundError(recipeID.String())
	}

	dup, err := s.recipeRepo.HasDuplicate(ctx, userID, original.Title(), original.Source().URL)
	if err != nil {
		return nil, apperrors.NewDatabaseError("check duplicate", err)
	}
	if dup {
		return nil, apperrors.NewDuplicateRecipeError(recipeID.String())
	}

	cp, err := original.CopyFor(owner.ID(), owner.Name())
	if err != nil {
		switch err {
		case recipe.ErrNotPublic:
			return nil, apperrors.NewForbiddenError("This recipe is not public")
		default:
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	if err := s.recipeRepo.Create(ctx, cp); err != nil {
		return nil, apperrors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("recipe copied",
		zap.String("original_id", recipeID.String()),
		zap.String("copy_id", cp.ID().String()),
		zap.String("user_id", userID.String()),
	)

	dto := entityToDTO(cp)
	return &dto, nil
}

// AttachImage processes and stores a photo for an owned recipe,
// replacing any previous one.
func (s *Service) AttachImage(ctx context.Context, userID, recipeID uuid.UUID, data []byte, contentType string) (*RecipeDTO, error) {
	entity, err := s.findOwned(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, recipeID, data, contentType)
	if err != nil {
		return nil, err
	}

	entity.SetImage(url)
	if err := s.recipeRepo.Update(ctx, entity); err != nil {
		return nil, apperrors.NewDatabaseError("update recipe", err)
	}

	dto := entityToDTO(entity)
	return &dto, nil
}

// DeleteImage removes the photo of an owned recipe
func (s *Service) DeleteImage(ctx context.Context, userID, recipeID uuid.UUID) error {
	entity, err := s.findOwned(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	imageURL := entity.ImageURL()
	if err := entity.ClearImage(); err != nil {
		return apperrors.NewNoImageError()
	}

	if err := s.images.Remove(ctx, imageURL); err != nil {
		s.logger.Warn("failed to remove image file", zap.Error(err))
	}

	if err := s.recipeRepo.Update(ctx, entity); err != nil {
		return apperrors.NewDatabaseError("update recipe", err)
	}
	return nil
}

// SendByEmail mails a recipe the user can see to a recipient.
func (s *Service) SendByEmail(ctx context.Context, userID, recipeID uuid.UUID, toEmail string) error {
	entity, err := s.findVisible(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	err = s.mailer.SendRecipe(ctx, toEmail, email.RecipeSummary{
		Title:       entity.Title(),
		Description: entity.Description(),
		PrepTime:    entity.PrepTime(),
		CookTime:    entity.CookTime(),
		Servings:    entity.Servings(),
		Ingredients: entity.Ingredients(),
		Steps:       entity.Steps(),
		UserName:    entity.UserName(),
	})
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeExternalServiceError, "Failed to send email", "").WithCause(err)
	}

	s.logger.Info("recipe sent by email", zap.String("recipe_id", recipeID.String()))
	return nil
}

// RequestFromOwner forwards a visitor's request for a recipe on the
// public feed. No authentication involved; the requester leaves a
// reply address.
func (s *Service) RequestFromOwner(ctx context.Context, recipeID uuid.UUID, fromName, fromEmail, message string) error {
	entity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return apperrors.NewRecipeNotFoundError(recipeID.String())
	}
	if !entity.IsPublic() {
		return apperrors.NewForbiddenError("This recipe is not public")
	}

	err = s.mailer.SendRecipeRequest(ctx, email.RecipeRequest{
		RecipeTitle: entity.Title(),
		OwnerName:   entity.UserName(),
		FromName:    fromName,
		FromEmail:   fromEmail,
		Message:     message,
	})
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeExternalServiceError, "Failed to send email", "").WithCause(err)
	}
	return nil
}

// findOwned loads a recipe and checks ownership. Operating on another
// user's recipe is forbidden.
func (s *Service) findOwned(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, error) {
	entity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewRecipeNotFoundError(recipeID.String())
	}
	if !entity.IsOwnedBy(userID) {
		return nil, apperrors.NewForbiddenError("You do not own this recipe")
	}
	return entity, nil
}

func (s *Service) findVisible(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, error) {
	entity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, apperrors.NewRecipeNotFoundError(recipeID.String())
	}
	if !entity.IsOwnedBy(userID) && !entity.IsPublic() {
		return nil, apperrors.NewForbiddenError("This recipe is not public")
	}
	return entity, nil
}

func validateTags(hasFilter func(string) bool, tags []string) error {
	for _, tag := range tags {
		if !hasFilter(tag) {
			return apperrors.NewInvalidTagError(tag)
		}
	}
	return nil
}

func entityToDTO(entity *recipe.Recipe) RecipeDTO {
	return RecipeDTO{
		ID:          entity.ID(),
		Title:       entity.Title(),
		Description: entity.Description(),
		PrepTime:    entity.PrepTime(),
		CookTime:    entity.CookTime(),
		Servings:    entity.Servings(),
		Ingredients: entity.Ingredients(),
		Steps:       entity.Steps(),
		Tags:        entity.Tags(),
		SourceType:  string(entity.Source().Type),
		SourceURL:   entity.Source().URL,
		ImageURL:    entity.ImageURL(),
		IsPublic:    entity.IsPublic(),
		CopiedFrom:  entity.CopiedFrom(),
		UserName:    entity.UserName(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}
}

func entitiesToDTOs(entities []*recipe.Recipe) []RecipeDTO {
	dtos := make([]RecipeDTO, len(entities))
	for i, e := range entities {
		dtos[i] = entityToDTO(e)
	}
	return dtos
}
