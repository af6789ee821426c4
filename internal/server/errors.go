package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	billingdomain "github.com/smallbiznis/voltra/internal/billing/domain"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"github.com/smallbiznis/voltra/internal/export"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"github.com/smallbiznis/voltra/internal/tariff"
	ticketdomain "github.com/smallbiznis/voltra/internal/ticket/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware maps domain errors collected on the gin context to
// a JSON error envelope. Handlers report errors via AbortWithError and never
// write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "request", Code: err.Error(), Message: err.Error()},
			},
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, billingdomain.ErrInvalidUsage),
		errors.Is(err, consumptiondomain.ErrInvalidPeriod),
		errors.Is(err, subscriberdomain.ErrInvalidID),
		errors.Is(err, subscriberdomain.ErrInvalidUsername),
		errors.Is(err, subscriberdomain.ErrInvalidName),
		errors.Is(err, subscriberdomain.ErrInvalidRole),
		errors.Is(err, ticketdomain.ErrInvalidSubject),
		errors.Is(err, ticketdomain.ErrInvalidMessage),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, export.ErrBadHeader),
		errors.Is(err, tariff.ErrInvalidBandWidth),
		errors.Is(err, tariff.ErrInvalidBandRate):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, subscriberdomain.ErrNotFound),
		errors.Is(err, consumptiondomain.ErrRecordNotFound),
		errors.Is(err, ticketdomain.ErrTicketNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, subscriberdomain.ErrDuplicateUsername),
		errors.Is(err, subscriberdomain.ErrSelfRemoval),
		errors.Is(err, consumptiondomain.ErrAlreadyPaid),
		errors.Is(err, consumptiondomain.ErrDuplicateRecord),
		errors.Is(err, ticketdomain.ErrNotParticipant):
		return true
	default:
		return false
	}
}

func invalidRequestError() error {
	return ErrInvalidRequest
}
