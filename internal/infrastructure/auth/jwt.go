package auth

import (
	"errors"
	"slices"
	"strconv"

	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the access token claims issued by the identity service
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// HasRole reports whether the token grants role
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// UserIDInt parses the numeric storefront user ID
func (c *Claims) UserIDInt() (int64, error) {
	return strconv.ParseInt(c.UserID, 10, 64)
}

// JWTVerifier validates HS256 access tokens. Tokens are issued elsewhere;
// the storefront only verifies them.
type JWTVerifier struct {
	secret    []byte
	issuer    string
	adminRole string
	parser    *jwt.Parser
}

// NewJWTVerifier creates a verifier from the jwt config section
func NewJWTVerifier(cfg config.JWTConfig) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTVerifier{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		adminRole: cfg.AdminRole,
		parser:    jwt.NewParser(opts...),
	}
}

// AdminRole is the role required on /admin routes
func (v *JWTVerifier) AdminRole() string {
	return v.adminRole
}

// ValidateAccessToken checks the signature, issuer and time claims
func (v *JWTVerifier) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrInvalidClaims
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
