package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redefine/facility/api/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound         = "NOT_FOUND"
	ErrBadRequest       = "BAD_REQUEST"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidation       = "VALIDATION_ERROR"
	ErrERP              = "ERP_ERROR"
	ErrNoBuildingData   = "NO_BUILDING_DATA"
	ErrNoInternalLabel  = "NO_INTERNAL_LABEL"
	ErrEmptyPrompt      = "EMPTY_PROMPT"
	ErrNoPlacesKey      = "NO_PLACES_KEY"
	ErrExternalSearch   = "EXTERNAL_SEARCH_ERROR"
	ErrNoVendorSelected = "NO_VENDOR_SELECTED"
	ErrStoreUpdate      = "STORE_UPDATE_ERROR"
	ErrRender           = "RENDER_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Precondition returns a 422 response with a portal error code. It is used
// for typed domain preconditions such as a missing internal label or an
// empty search prompt.
func Precondition(c *gin.Context, code, message string) {
	respond(c, http.StatusUnprocessableEntity, code, message, nil)
}

// Upstream returns a 502 response with a portal error code. It is used when
// the entity directory or the places-search provider fails.
func Upstream(c *gin.Context, code, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Upstream failure", err, map[string]interface{}{
			"code": code,
			"path": c.Request.URL.Path,
		})
	}
	respond(c, http.StatusBadGateway, code, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The underlying error is logged but not exposed to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// StoreError returns a 500 response for ticket-store write failures.
// The underlying error is logged but not exposed to the client.
func StoreError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Ticket store write failed", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	}
	respond(c, http.StatusInternalServerError, ErrStoreUpdate, message, nil)
}

// RenderError returns a 500 response for report rendering failures.
// Unlike InternalServerError, the underlying message is included in the
// details field so an operator can diagnose font/layout failures.
func RenderError(c *gin.Context, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Report rendering failed", err, map[string]interface{}{
			"path": c.Request.URL.Path,
		})
	}
	respond(c, http.StatusInternalServerError, ErrRender, "Report rendering failed",
		map[string]interface{}{"details": err.Error()})
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	log := middleware.GetLogger(c)
	if log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"path":   c.Request.URL.Path,
			"fields": details,
		})
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrValidation,
			Message:   "Validation failed for one or more fields",
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	requestID := middleware.GetRequestID(c)

	if status < http.StatusInternalServerError {
		if log := middleware.GetLogger(c); log != nil {
			log.Warn(message, map[string]interface{}{
				"code": code,
				"path": c.Request.URL.Path,
			})
		}
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "url":
		return "Must be a valid URL"
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
