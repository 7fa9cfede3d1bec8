package mw

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"game-rental-backend/config"
	"game-rental-backend/internal/model"
)

// userKey is the gin context key under which the authenticated claims are
// stored.
const userKey = "auth_user"

var jwtSigningMethod = jwt.SigningMethodHS256

// SessionClaims is the payload of a session bearer token. Tokens are minted
// by the auth frontend; this service only verifies them.
type SessionClaims struct {
	UserID   int64      `json:"uid"`
	Role     model.Role `json:"role"`
	BranchID *int64     `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// MintSessionToken issues a signed session token. Used by tooling and tests;
// the production issuer lives in the auth frontend.
func MintSessionToken(cfg config.AuthConfig, now time.Time, claims SessionClaims, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates the token string and returns typed claims.
func ParseSessionToken(cfg config.AuthConfig, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireUser rejects requests without a valid bearer token and stores the
// session claims in the request context.
func RequireUser(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := ParseSessionToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userKey, claims)
		c.Next()
	}
}

// SessionUser returns the claims stored by RequireUser, or nil when the
// request was not authenticated.
func SessionUser(c *gin.Context) *SessionClaims {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*SessionClaims)
	return claims
}
