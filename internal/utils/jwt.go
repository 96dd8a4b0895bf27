package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the token contract between login and the auth middleware.
type AuthClaims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	ModeAccess string `json:"mode_access"`
}

const defaultTokenTTL = 12 * time.Hour

func SignToken(userID, role, modeAccess string) (string, error) {
	const op = "utils.SignToken"

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", E(CodeInternal, op, "JWT_SECRET is not set", nil)
	}

	now := time.Now().UTC()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(defaultTokenTTL)),
		},
		Role:       role,
		ModeAccess: modeAccess,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", E(CodeInternal, op, "failed to sign token", err)
	}
	return signed, nil
}
