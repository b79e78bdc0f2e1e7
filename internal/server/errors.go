package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appointmentdomain "github.com/odontocare/odontocare/internal/appointment/domain"
	authdomain "github.com/odontocare/odontocare/internal/auth/domain"
	clinicfinancedomain "github.com/odontocare/odontocare/internal/clinicfinance/domain"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
	patientfinancedomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
	staffdomain "github.com/odontocare/odontocare/internal/staff/domain"
	subscriptiondomain "github.com/odontocare/odontocare/internal/subscription/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("não autorizado")
	ErrInvalidRequest = errors.New("requisição inválida")
)

// ErrorHandlingMiddleware renders errors attached via AbortWithError.
// Domain-rule messages reach the client verbatim; everything else is
// collapsed into a generic message.
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
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{Message: "não autorizado"}

	case errors.Is(err, subscriptiondomain.ErrSubscriptionBlocked):
		return http.StatusPaymentRequired, errorPayload{Message: err.Error()}

	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{Message: err.Error()}

	case isStateConflict(err):
		return http.StatusConflict, errorPayload{Message: err.Error()}

	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{Message: err.Error()}

	default:
		return http.StatusInternalServerError, errorPayload{Message: "erro interno"}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case clinicfinancedomain.IsValidationError(err),
		patientfinancedomain.IsValidationError(err),
		patientdomain.IsValidationError(err),
		staffdomain.IsValidationError(err),
		appointmentdomain.IsValidationError(err),
		errors.Is(err, subscriptiondomain.ErrInvalidStatus),
		errors.Is(err, subscriptiondomain.ErrInvalidProvider):
		return true
	default:
		return false
	}
}

func isStateConflict(err error) bool {
	switch {
	case clinicfinancedomain.IsStateConflict(err),
		errors.Is(err, patientfinancedomain.ErrPaymentImmutable),
		errors.Is(err, appointmentdomain.ErrOverlap):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, patientdomain.ErrNotFound),
		errors.Is(err, staffdomain.ErrNotFound),
		errors.Is(err, appointmentdomain.ErrNotFound),
		errors.Is(err, clinicfinancedomain.ErrNotFound),
		errors.Is(err, patientfinancedomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func errorBody(msg string) gin.H {
	return gin.H{"error": gin.H{"message": msg}}
}
