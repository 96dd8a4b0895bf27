package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

func RequireRole(allowed ...models.UserRole) gin.HandlerFunc {
	allow := map[string]struct{}{}
	for _, a := range allowed {
		allow[strings.ToUpper(string(a))] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get("role")
		role, _ := v.(string)
		role = strings.ToUpper(strings.TrimSpace(role))

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "forbidden",
			})
			return
		}

		if _, ok := allow[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "forbidden",
			})
			return
		}

		c.Next()
	}
}

func RequireTeacher() gin.HandlerFunc {
	return RequireRole(models.RoleTeacher, models.RoleAdmin)
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
