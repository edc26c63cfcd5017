package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authgate/internal/models"
	"authgate/internal/services"
)

const userContextKey = "currentUser"

// RequireAuth extracts the bearer token, validates it against the current
// stored token version and attaches the resolved user to the context. Any
// failure short-circuits with 401 before the downstream handler runs.
func RequireAuth(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			abortUnauthenticated(c)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthenticated(c)
			return
		}
		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			abortUnauthenticated(c)
			return
		}

		user, err := tokens.Validate(tokenStr)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": "Invalid or expired token.",
	})
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
