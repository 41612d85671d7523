package handlers

import (
	"context"
	"net/http"

	adminapp "github.com/cookingcapture/api/internal/application/admin"
	"go.uber.org/zap"
)

// ContactMailer forwards contact-form messages to the admin.
type ContactMailer interface {
	SendContactMessage(ctx context.Context, fromName, fromEmail, subject, message string) error
}

// AdminHandlers handles administration, data export and contact
type AdminHandlers struct {
	admin   *adminapp.Service
	contact ContactMailer
	logger  *zap.Logger
}

// NewAdminHandlers creates a new admin handlers instance
func NewAdminHandlers(admin *adminapp.Service, contact ContactMailer, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{admin: admin, contact: contact, logger: logger}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStats(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// CreateUser handles POST /api/admin/users
func (h *AdminHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var cmd adminapp.CreateUserCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	summary, err := h.admin.CreateUser(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// UpdateUser handles PUT /api/admin/users/{id}
func (h *AdminHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var cmd adminapp.UpdateUserCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	summary, err := h.admin.UpdateUser(r.Context(), userID, cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.admin.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Broadcast handles POST /api/admin/email/all
func (h *AdminHandlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	var cmd adminapp.BroadcastCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.admin.Broadcast(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sent":   result.Sent,
		"failed": result.Failed,
	})
}

// EmailUsers handles POST /api/admin/email
func (h *AdminHandlers) EmailUsers(w http.ResponseWriter, r *http.Request) {
	var cmd adminapp.EmailCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.admin.EmailUsers(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sent":   result.Sent,
		"failed": result.Failed,
	})
}

// ExportUserData handles GET /api/admin/users/{id}/export
func (h *AdminHandlers) ExportUserData(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	export, err := h.admin.GetUserExport(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// SendUserData handles POST /api/admin/users/{id}/send-data
func (h *AdminHandlers) SendUserData(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.admin.SendUserData(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "L'export des données a été envoyé par email",
	})
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// Contact handles POST /api/contact
func (h *AdminHandlers) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.contact.SendContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message envoyé"})
}
