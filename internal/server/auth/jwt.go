// Package auth issues and verifies the HS256 capability tokens the HTTP API
// requires. A token scopes the bearer to one tenant and identifies the
// acting user for audit fields and conflict attribution.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mediaplanhq/campaignstore/internal/common"
)

// Claims carries the capability scope alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenantId"`
	ActorID  string `json:"actorId"`
}

// GenerateToken signs a capability token for the given tenant and actor.
func GenerateToken(tenantID, actorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		TenantID: tenantID,
		ActorID:  actorID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Expired, tampered, or otherwise invalid tokens map to
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.TenantID == "" || claims.ActorID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
