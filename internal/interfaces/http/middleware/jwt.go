package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/boutique/storefront/internal/infrastructure/auth"
	"github.com/boutique/storefront/internal/infrastructure/logger"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier validates bearer access tokens
type TokenVerifier interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// JWTAuth requires a valid bearer token and stores its claims in the context
func JWTAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := verifier.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// RequireRole rejects authenticated callers that lack role. It must run after JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Admin access required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", GetRequestID(c)),
	)

	message := "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	case strings.HasPrefix(reason, "Missing") || strings.HasPrefix(reason, "Invalid authorization"):
		message = reason
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
