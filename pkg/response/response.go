package response

import (
	"errors"
	"net/http"

	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetUserID retrieves the authenticated user ID from the request session
func GetUserID(c *gin.Context) (uint, error) {
	sess := session.From(c)
	if !sess.IsAuthenticated() {
		return 0, apperror.ErrUnauthorized
	}
	return *sess.UserID, nil
}

// T translates key into the request language.
func T(c *gin.Context, key i18n.Key) string {
	return i18n.T(session.From(c).Language, key)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logger.FromGin(c).Error("internal error", zap.Error(err))
	}
	_ = c.Error(err)

	body := gin.H{"error": T(c, messageKey(err, code))}
	if code != http.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	if apperror.IsTransient(err) {
		body["transient"] = true
		if errors.Is(err, apperror.ErrStorageBusy) {
			c.Header("Retry-After", "1")
		}
	}
	c.JSON(code, body)
}

// ResponseMessage writes a localized message with an optional payload.
func ResponseMessage(c *gin.Context, code int, key i18n.Key, data any) {
	body := gin.H{"message": T(c, key)}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func messageKey(err error, code int) i18n.Key {
	var keyed *i18n.Error
	if errors.As(err, &keyed) {
		return keyed.Key
	}

	switch code {
	case http.StatusBadRequest:
		return i18n.ErrInvalidInput
	case http.StatusUnauthorized:
		return i18n.ErrUnauthorized
	case http.StatusNotFound:
		return i18n.ErrNotFound
	case http.StatusConflict:
		return i18n.ErrConflict
	case http.StatusUnprocessableEntity:
		return i18n.ErrAttachment
	case http.StatusTooManyRequests:
		return i18n.ErrRateLimited
	case http.StatusServiceUnavailable:
		return i18n.ErrStorageBusy
	default:
		return i18n.ErrInternal
	}
}
