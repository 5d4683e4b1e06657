package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "lab-inventory-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// statusOf maps the error taxonomy to HTTP statuses. Guard and state errors
// are final; only a store failure invites a retry of the whole transition.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotAuthorized),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenIsNotAccess),
		errors.Is(err, apperrors.ErrActorNotInContext):
		if errors.Is(err, apperrors.ErrNotAuthorized) {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrScopeMismatch):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		logger.Error("unhandled error", zap.Error(err))
	}
	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: err.Error(),
	})
}
