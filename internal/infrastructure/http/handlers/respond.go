// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := apperrors.Wrap(err, "An unexpected error occurred")
	requestID := chimiddleware.GetReqID(r.Context())

	if appErr.StatusCode() >= 500 {
		logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.String("path", r.URL.Path),
			zap.Error(appErr),
		)
	}

	writeJSON(w, appErr.StatusCode(), apperrors.ToErrorResponse(appErr, requestID))
}

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// pathUUID parses a uuid path parameter
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequestError("invalid id")
	}
	return id, nil
}

// decodeJSON decodes and validates a request body
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewBadRequestError("invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}
