package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/eureka-edu/studybuddy/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func JWTAuth() gin.HandlerFunc {
	secret := os.Getenv("JWT_SECRET")

	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "JWT_SECRET is not set",
			})
			return
		}

		auth := c.GetHeader("Authorization")
		raw := ""
		if strings.HasPrefix(auth, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		// Browsers cannot set headers on websocket upgrades; allow ?token=.
		if raw == "" && c.IsWebsocket() {
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		claims := &utils.AuthClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid token",
			})
			return
		}

		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "missing subject",
			})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Set("mode_access", claims.ModeAccess)
		c.Next()
	}
}
