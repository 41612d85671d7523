package handlers

import (
	"net/http"

	userapp "github.com/cookingcapture/api/internal/application/user"
	"github.com/cookingcapture/api/internal/infrastructure/http/middleware"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// AuthHandlers handles registration, sessions and password flows
type AuthHandlers struct {
	users  *userapp.Service
	logger *zap.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(users *userapp.Service, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{users: users, logger: logger}
}

// Register handles POST /api/auth/register
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var cmd userapp.RegisterCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.users.Register(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd userapp.LoginCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.users.Login(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Si un compte existe pour cette adresse, un email a été envoyé",
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var cmd userapp.ResetPasswordCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.users.ResetPassword(r.Context(), cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mot de passe mis à jour"})
}

// Me handles GET /api/auth/me
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	dto, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// UpdateName handles PUT /api/auth/me
func (h *AuthHandlers) UpdateName(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var cmd userapp.UpdateNameCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.users.UpdateName(r.Context(), userID, cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ChangePassword handles PUT /api/auth/me/password
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var cmd userapp.ChangePasswordCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mot de passe modifié"})
}

// DeleteAccount handles DELETE /api/auth/me
func (h *AuthHandlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ListFilters handles GET /api/filters
func (h *AuthHandlers) ListFilters(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	defaults, customs, err := h.users.ListFilters(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"defaults": defaults,
		"customs":  customs,
	})
}

// CreateFilter handles POST /api/filters
func (h *AuthHandlers) CreateFilter(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var cmd userapp.FilterCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	filter, err := h.users.CreateFilter(r.Context(), userID, cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, filter)
}

// RenameFilter handles PUT /api/filters/{id}
func (h *AuthHandlers) RenameFilter(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	filterID := pathParam(r, "id")

	var cmd userapp.FilterCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.users.RenameFilter(r.Context(), userID, filterID, cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Filtre renommé"})
}

// DeleteFilter handles DELETE /api/filters/{id}
func (h *AuthHandlers) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	filterID := pathParam(r, "id")

	if err := h.users.DeleteFilter(r.Context(), userID, filterID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
