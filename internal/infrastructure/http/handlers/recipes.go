package handlers

import (
	"io"
	"net/http"

	recipeapp "github.com/cookingcapture/api/internal/application/recipe"
	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/infrastructure/http/middleware"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"go.uber.org/zap"
)

// uploads larger than this are refused before buffering the body
const maxMultipartMemory = 12 << 20

// RecipeHandlers handles recipe capture and management
type RecipeHandlers struct {
	recipes *recipeapp.Service
	logger  *zap.Logger
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(recipes *recipeapp.Service, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes, logger: logger}
}

type importURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ImportFromURL handles POST /api/recipes/extract
func (h *RecipeHandlers) ImportFromURL(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req importURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.CaptureFromURL(r.Context(), userID, req.URL)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

type importTextRequest struct {
	Text string `json:"text" validate:"required,min=10"`
}

// ImportFromText handles POST /api/recipes/extract-text
func (h *RecipeHandlers) ImportFromText(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req importTextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.CaptureFromText(r.Context(), userID, req.Text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// ImportFromFile handles POST /api/recipes/upload. It accepts a
// multipart "file" part holding a PDF, DOCX, text file or photo.
func (h *RecipeHandlers) ImportFromFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	data, contentType, err := readFilePart(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.CaptureFromUpload(r.Context(), userID, data, contentType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

type createRecipeRequest struct {
	Title       string              `json:"title" validate:"required,min=1,max=200"`
	Description string              `json:"description"`
	PrepTime    int                 `json:"prep_time" validate:"min=0"`
	CookTime    int                 `json:"cook_time" validate:"min=0"`
	Servings    int                 `json:"servings" validate:"min=0"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Steps       []recipe.Step       `json:"steps"`
	Tags        []string            `json:"tags"`
}

// Create handles POST /api/recipes/manual
func (h *RecipeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req createRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.CreateManual(r.Context(), userID, recipe.Content{
		Title:       req.Title,
		Description: req.Description,
		PrepTime:    req.PrepTime,
		CookTime:    req.CookTime,
		Servings:    req.Servings,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	}, req.Tags)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// List handles GET /api/recipes
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	dtos, err := h.recipes.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPublicRecent handles GET /api/recipes/public/recent. No
// authentication required.
func (h *RecipeHandlers) ListPublicRecent(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.recipes.ListPublicRecent(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPublic handles GET /api/recipes/public/{id}. No authentication
// required; private recipes answer 403.
func (h *RecipeHandlers) GetPublic(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.GetPublic(r.Context(), recipeID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.Get(r.Context(), userID, recipeID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

type updateRecipeRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	PrepTime    *int                 `json:"prep_time"`
	CookTime    *int                 `json:"cook_time"`
	Servings    *int                 `json:"servings"`
	Ingredients *[]recipe.Ingredient `json:"ingredients"`
	Steps       *[]recipe.Step       `json:"steps"`
	Tags        *[]string            `json:"tags"`
	IsPublic    *bool                `json:"is_public"`
}

// Update handles PUT /api/recipes/{id}. Absent fields are untouched,
// including visibility.
func (h *RecipeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.Update(r.Context(), userID, recipeID, recipeapp.UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
		PrepTime:    req.PrepTime,
		CookTime:    req.CookTime,
		Servings:    req.Servings,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		Tags:        req.Tags,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/recipes/{id}
func (h *RecipeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.recipes.Delete(r.Context(), userID, recipeID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type sendEmailRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
}

// SendByEmail handles POST /api/recipes/{id}/send-email
func (h *RecipeHandlers) SendByEmail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req sendEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.recipes.SendByEmail(r.Context(), userID, recipeID, req.RecipientEmail); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Recette envoyée à " + req.RecipientEmail,
	})
}

type recipeRequestBody struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"max=5000"`
}

// Request handles POST /api/recipes/{id}/request. Open to visitors:
// the public feed lets anyone ask the author for a recipe.
func (h *RecipeHandlers) Request(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req recipeRequestBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.recipes.RequestFromOwner(r.Context(), recipeID, req.Name, req.Email, req.Message); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Demande envoyée"})
}

// Copy handles POST /api/recipes/copy/{id}
func (h *RecipeHandlers) Copy(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.Copy(r.Context(), userID, recipeID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// UploadImage handles POST /api/recipes/{id}/upload-image
func (h *RecipeHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	data, contentType, err := readFilePart(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.AttachImage(r.Context(), userID, recipeID, data, contentType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteImage handles DELETE /api/recipes/{id}/image
func (h *RecipeHandlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	recipeID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.recipes.DeleteImage(r.Context(), userID, recipeID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// readFilePart reads the "file" part of a multipart request
func readFilePart(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, "", apperrors.NewBadRequestError("invalid multipart body")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", apperrors.NewBadRequestError("missing file part")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperrors.NewBadRequestError("unreadable file part")
	}

	return data, header.Header.Get("Content-Type"), nil
}
