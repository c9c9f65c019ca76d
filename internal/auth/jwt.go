// Package auth signs and validates the tokens the dashboard issues: the
// workspace cookie that scopes persisted view state, and the service token
// presented to the backend.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WorkspaceClaims identify a browser workspace.
type WorkspaceClaims struct {
	Workspace string `json:"ws"`
	jwt.RegisteredClaims
}

// WorkspaceExpiry is the workspace cookie lifetime. Cookies are reissued on
// every visit so only abandoned workspaces expire.
const WorkspaceExpiry = 90 * 24 * time.Hour

// ServiceExpiry is the lifetime of a backend service token.
const ServiceExpiry = 5 * time.Minute

// ServiceIssuer is the issuer claim of backend service tokens.
const ServiceIssuer = "armoury-dashboard"

// GenerateWorkspaceToken signs a workspace cookie value.
func GenerateWorkspaceToken(secret, workspace string) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	now := time.Now()
	claims := WorkspaceClaims{
		Workspace: workspace,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(WorkspaceExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return sign(secret, claims)
}

// ValidateWorkspaceToken parses a workspace cookie value.
func ValidateWorkspaceToken(secret, tokenStr string) (*WorkspaceClaims, error) {
	claims := &WorkspaceClaims{}
	if err := parse(secret, tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Workspace == "" {
		return nil, fmt.Errorf("invalid token: missing workspace")
	}
	return claims, nil
}

// GenerateServiceToken signs a short-lived bearer token for the backend.
func GenerateServiceToken(secret string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    ServiceIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(ServiceExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return sign(secret, claims)
}

// ValidateServiceToken checks a backend service token. The backend holds the
// same shared secret.
func ValidateServiceToken(secret, tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if err := parse(secret, tokenStr, claims, jwt.WithIssuer(ServiceIssuer)); err != nil {
		return nil, err
	}
	return claims, nil
}

// ServiceTokenSource returns a function minting a fresh service token per
// call, or nil when no secret is configured.
func ServiceTokenSource(secret string) func() (string, error) {
	if secret == "" {
		return nil
	}
	return func() (string, error) { return GenerateServiceToken(secret) }
}

func sign(secret string, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func parse(secret, tokenStr string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
