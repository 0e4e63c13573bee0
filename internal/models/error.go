package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Recipe-specific errors
	ErrRecipeNotFound     = "RECIPE_NOT_FOUND"
	ErrInvalidIngredients = "INVALID_INGREDIENTS"
	ErrImageNotFound      = "IMAGE_NOT_FOUND"
	ErrCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCategoryHasRecipes = "CATEGORY_HAS_RECIPES"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// Response is the envelope used by the resource endpoints
type Response struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"msg,omitempty"`
}

// NewResponse wraps data in a successful envelope
func NewResponse(data interface{}, message ...string) Response {
	resp := Response{Status: 1, Data: data}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	return resp
}
