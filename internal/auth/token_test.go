package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret-key-32-characters")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "alice", RoleEditor, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, token, ".")

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, RoleEditor, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
}

func TestGenerateTokenRejectsUnknownRole(t *testing.T) {
	_, err := GenerateToken(testSecret, "bob", "user", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = GenerateToken(nil, "bob", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestParseTokenFailures(t *testing.T) {
	valid, err := GenerateToken(testSecret, "alice", RoleAdmin, time.Hour)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleEditor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	noRoleToken, err := noRole.SignedString(testSecret)
	require.NoError(t, err)

	wrongRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "user"})
	wrongRoleToken, err := wrongRole.SignedString(testSecret)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin})
	unsignedToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret []byte
		token  string
	}{
		{"wrong secret", []byte("another-secret"), valid},
		{"expired", testSecret, expiredToken},
		{"missing role", testSecret, noRoleToken},
		{"unknown role", testSecret, wrongRoleToken},
		{"alg none", testSecret, unsignedToken},
		{"garbage", testSecret, "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}
}
