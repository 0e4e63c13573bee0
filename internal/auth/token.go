package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// WriteRoles are the roles allowed to modify recipes and categories
var WriteRoles = []string{RoleEditor, RoleAdmin}

var (
	ErrMissingSecret = errors.New("jwt secret is empty")
	ErrInvalidRole   = errors.New("invalid role")
)

// Claims are the JWT claims carried by editor tokens
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject with the given role.
// A zero ttl produces a token without expiry.
func GenerateToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if !slices.Contains(WriteRoles, role) {
		return "", fmt.Errorf("%w '%s'. Allowed roles: %s", ErrInvalidRole, role, strings.Join(WriteRoles, ", "))
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates the signature, exp, nbf and iat of tokenString
// and requires a known role claim
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// reject alg=none and asymmetric algorithms
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuedAt())
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	if claims.Role == "" {
		return nil, fmt.Errorf("token missing required 'role' claim")
	}
	if !slices.Contains(WriteRoles, claims.Role) {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidRole, claims.Role)
	}
	return claims, nil
}
