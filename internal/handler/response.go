package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tow/internal/repository"
	"tow/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropoffLocation),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidRuleUpdate):
		return http.StatusBadRequest

	// Conflict errors: transition guard lost, caller may re-read and retry.
	case errors.Is(err, service.ErrTripTaken),
		errors.Is(err, service.ErrTripNotAccepted),
		errors.Is(err, service.ErrTripNotInProgress),
		errors.Is(err, service.ErrTripNotCancellable):
		return http.StatusConflict

	// Payment required: retrying is pointless until the driver tops up.
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
