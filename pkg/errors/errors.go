// Package errors provides structured error handling for the application
package errors

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Domain errors
	CodeRecipeNotFound     ErrorCode = "RECIPE_NOT_FOUND"
	CodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	CodeFilterNotFound     ErrorCode = "FILTER_NOT_FOUND"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailAlreadyExists ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeTokenInvalid       ErrorCode = "TOKEN_INVALID"
	CodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	CodeFetchBlocked       ErrorCode = "FETCH_BLOCKED"
	CodeFetchFailed        ErrorCode = "FETCH_FAILED"
	CodeUnsupportedFile    ErrorCode = "UNSUPPORTED_FILE"
	CodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"
	CodeEmptyUpdate        ErrorCode = "EMPTY_UPDATE"
	CodeNoImage            ErrorCode = "NO_IMAGE"
	CodeInvalidTag         ErrorCode = "INVALID_TAG"
	CodeDuplicateRecipe    ErrorCode = "DUPLICATE_RECIPE"
)

// AppError represents an application error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeEmptyUpdate, CodeNoImage,
		CodeInvalidTag, CodeUnsupportedFile:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials, CodeTokenExpired, CodeTokenInvalid:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeRecipeNotFound, CodeUserNotFound, CodeFilterNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeEmailAlreadyExists, CodeDuplicateRecipe:
		return http.StatusConflict
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		// Upstream-dependency failures (extraction, fetch, email
		// provider) surface as plain server errors too.
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAppError(CodeUnauthorized, message, "")
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "Access forbidden"
	}
	return NewAppError(CodeForbidden, message, "")
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = "Resource not found"
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewRecipeNotFoundError creates a recipe not found error
func NewRecipeNotFoundError(recipeID string) *AppError {
	return NewAppError(
		CodeRecipeNotFound,
		"Recipe not found",
		"",
	).WithMetadata("recipe_id", recipeID)
}

// NewUserNotFoundError creates a user not found error
func NewUserNotFoundError(userID string) *AppError {
	return NewAppError(
		CodeUserNotFound,
		"User not found",
		"",
	).WithMetadata("user_id", userID)
}

// NewFilterNotFoundError creates a custom filter not found error
func NewFilterNotFoundError(filterID string) *AppError {
	return NewAppError(
		CodeFilterNotFound,
		"Filter not found",
		"",
	).WithMetadata("filter_id", filterID)
}

// NewEmailAlreadyExistsError creates an email already exists error
func NewEmailAlreadyExistsError() *AppError {
	return NewAppError(
		CodeEmailAlreadyExists,
		"Email already exists",
		"An account with this email address already exists",
	)
}

// NewInvalidCredentialsError creates an invalid credentials error
func NewInvalidCredentialsError() *AppError {
	return NewAppError(
		CodeInvalidCredentials,
		"Invalid credentials",
		"The provided email or password is incorrect",
	)
}

// NewTokenExpiredError creates a token expired error
func NewTokenExpiredError() *AppError {
	return NewAppError(CodeTokenExpired, "Token has expired", "")
}

// NewTokenInvalidError creates a malformed or mistyped token error
func NewTokenInvalidError() *AppError {
	return NewAppError(CodeTokenInvalid, "Token is invalid", "")
}

// NewExtractionFailedError creates an AI extraction failure error
func NewExtractionFailedError(cause error) *AppError {
	return NewAppError(
		CodeExtractionFailed,
		"Recipe extraction failed",
		"The content could not be parsed into a recipe",
	).WithCause(cause)
}

// NewFetchBlockedError creates an error for pages that refuse all fetch
// identities. The message names the blocked domain.
func NewFetchBlockedError(rawURL string) *AppError {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return NewAppError(
		CodeFetchBlocked,
		fmt.Sprintf("%s blocks automated extraction", host),
		"The site blocked the request even after retrying with an alternate identity",
	).WithMetadata("url", rawURL)
}

// NewFetchFailedError creates a generic webpage fetch error
func NewFetchFailedError(url string, cause error) *AppError {
	return NewAppError(
		CodeFetchFailed,
		"Failed to fetch page",
		"",
	).WithMetadata("url", url).WithCause(cause)
}

// NewUnsupportedFileError creates an unsupported upload type error
func NewUnsupportedFileError(contentType string) *AppError {
	return NewAppError(
		CodeUnsupportedFile,
		"Unsupported file type",
		fmt.Sprintf("Files of type %s cannot be processed", contentType),
	)
}

// NewFileTooLargeError creates a file size limit error
func NewFileTooLargeError(limit int64) *AppError {
	return NewAppError(
		CodeFileTooLarge,
		"File too large",
		fmt.Sprintf("Uploads are limited to %d bytes", limit),
	)
}

// NewEmptyUpdateError creates an error for updates that carry no fields
func NewEmptyUpdateError() *AppError {
	return NewAppError(CodeEmptyUpdate, "No fields to update", "")
}

// NewNoImageError creates an error for image operations on recipes without one
func NewNoImageError() *AppError {
	return NewAppError(CodeNoImage, "Recipe has no image", "")
}

// NewInvalidTagError creates an error for unknown tag identifiers
func NewInvalidTagError(tagID string) *AppError {
	return NewAppError(
		CodeInvalidTag,
		"Unknown tag",
		"Tags must be default filters or one of your custom filters",
	).WithMetadata("tag_id", tagID)
}

// NewDuplicateRecipeError creates an error for copying an already-copied recipe
func NewDuplicateRecipeError(recipeID string) *AppError {
	return NewAppError(
		CodeDuplicateRecipe,
		"Recipe already in your collection",
		"",
	).WithMetadata("recipe_id", recipeID)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Is checks if an error carries a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
