package auth

import (
	"testing"
	"time"

	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestVerifier() *JWTVerifier {
	return NewJWTVerifier(config.JWTConfig{
		Secret:    testSecret,
		Issuer:    "storefront",
		AdminRole: "admin",
	})
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront",
			Subject:   "17",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		UserID: "17",
		Roles:  []string{"admin"},
	}
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	v := newTestVerifier()

	claims, err := v.ValidateAccessToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))

	require.NoError(t, err)
	assert.True(t, claims.HasRole(v.AdminRole()))
	assert.False(t, claims.HasRole("customer"))
	id, err := claims.UserIDInt()
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
}

func TestJWTVerifier_SubjectFallback(t *testing.T) {
	c := validClaims()
	c.UserID = ""

	claims, err := newTestVerifier().ValidateAccessToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))

	require.NoError(t, err)
	assert.Equal(t, "17", claims.UserID)
}

func TestJWTVerifier_Rejections(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	future := validClaims()
	future.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	foreign := validClaims()
	foreign.Issuer = "someone-else"

	anonymous := validClaims()
	anonymous.UserID = ""
	anonymous.Subject = ""

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), ErrExpiredToken},
		{"not yet valid", sign(t, jwt.SigningMethodHS256, []byte(testSecret), future), ErrTokenNotYetValid},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), foreign), ErrInvalidClaims},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret"), validClaims()), ErrInvalidToken},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), ErrInvalidToken},
		{"no user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), anonymous), ErrMissingUserID},
		{"garbage", "not-a-jwt", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestVerifier().ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
