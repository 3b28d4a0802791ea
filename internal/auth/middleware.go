package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/leettrack/internal/response"
)

const UserIDKey = "user_id"

// UserMiddleware stores the resolved user id under UserIDKey.
func UserMiddleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := provider.UserID(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.BadRequest(err.Error()))
			return
		}
		c.Set(UserIDKey, id)
		c.Next()
	}
}

// UserID returns the id set by UserMiddleware.
func UserID(c *gin.Context) int64 {
	return c.MustGet(UserIDKey).(int64)
}
