package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims for the JWT tokens. The identity travels in
// the standard "sub" claim; UserID is its parsed form.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService validates the access tokens issued by the identity provider.
// Issuing is only used by tooling and tests.
type TokenService interface {
	// IssueAccessToken creates a signed access token for an identity and role claim.
	IssueAccessToken(userID uuid.UUID, role string) (string, error)

	// ValidateToken checks the validity of a token string.
	ValidateToken(tokenString string) (*Claims, error)

	// AccessTokenTTL returns the configured lifetime of access tokens.
	AccessTokenTTL() time.Duration
}
