package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makhin/gedsync/internal/domain"
)

// APIError represents a standardized API error response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
)

// customErrorHandler handles errors and returns consistent JSON responses,
// mapping the engine's fatal configuration errors (§7) the same way the
// teacher maps its command/query sentinel errors.
func customErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr APIError
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrAnchorNotFound):
		code = http.StatusNotFound
		apiErr = APIError{Code: CodeNotFound, Message: "anchor person not found in one or both trees"}
	case errors.Is(err, domain.ErrUnknownStrategy), errors.Is(err, domain.ErrInvalidOptionRange):
		code = http.StatusBadRequest
		apiErr = APIError{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrMalformedTree):
		code = http.StatusBadRequest
		apiErr = APIError{Code: CodeBadRequest, Message: err.Error()}
	default:
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				apiErr = APIError{Code: httpStatusToCode(code), Message: msg}
			} else {
				apiErr = APIError{Code: httpStatusToCode(code), Message: http.StatusText(code)}
			}
		} else {
			apiErr = APIError{Code: CodeInternalError, Message: "an unexpected error occurred"}
			c.Logger().Error(err)
		}
	}

	c.JSON(code, apiErr)
}

func httpStatusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	default:
		return CodeInternalError
	}
}

// NewAPIError creates a new API error with the given code and message.
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithDetails adds details to the error.
func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}
