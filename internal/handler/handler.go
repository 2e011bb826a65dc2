package handler

import (
	"net/http"

	"catering-backend/internal/middleware"
	"catering-backend/internal/service"
	"catering-backend/pkg/apperror"
	"catering-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// actorFrom rebuilds the service Actor from the identity the auth middleware
// stored on the context.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	actor, err := service.ActorFromStrings(
		c.GetString(middleware.CtxUserID),
		c.GetString(middleware.CtxUserRole),
		c.GetString(middleware.CtxUsername),
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return service.Actor{}, false
	}
	return actor, true
}

// writeError maps a service error to the HTTP response envelope. Typed
// application errors carry their own status code and field issues; anything
// else is a 500 with a generic message.
func writeError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.HTTPStatus()
		if len(appErr.Fields) > 0 {
			c.JSON(status, response.ValidationError(status, appErr.Message, appErr.Fields))
			return
		}
		c.JSON(status, response.Error(status, appErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
}

// listEnvelope is the standard paginated payload shape.
func listEnvelope(key string, items interface{}, total int64, page, limit int) map[string]interface{} {
	return map[string]interface{}{
		key:     items,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
