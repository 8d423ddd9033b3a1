package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-tally/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/toggle"
)

type errorResponse struct {
	Error string `json:"error" example:"tracked item not found"`
}

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrRecordNotFoundForDay),
		errors.Is(err, domain.ErrPendingNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrItemConflict),
		errors.Is(err, domain.ErrAmbiguousUncomplete),
		errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, domain.ErrDetailedRecordUncompleteRejected),
		errors.Is(err, domain.ErrItemArchived):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrItemNameEmpty),
		errors.Is(err, domain.ErrItemNameTooLong),
		errors.Is(err, domain.ErrItemDescTooLong),
		errors.Is(err, domain.ErrItemInvalidUserID),
		errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrInvalidGoal),
		errors.Is(err, domain.ErrInvalidItemType),
		errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrInvalidDayKey),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, toggle.ErrDetailRequired):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrStoreFailure):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the error response. Server-side failures are attached to
// the gin context for the request logger and get a generic message.
func handleError(c *gin.Context, err error) {
	status := statusFor(err)

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "internal server error"
	case http.StatusServiceUnavailable:
		msg = "storage temporarily unavailable"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// userFrom reads the authenticated user. A missing ID means the route was
// mounted without the auth middleware.
func userFrom(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
		return "", false
	}
	return userID, true
}
