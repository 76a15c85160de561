package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the shell can read from a backend token without the
// backend's signing secret. It is informational only; the backend remains the
// sole judge of validity.
type TokenInfo struct {
	Subject   string
	Role      string
	ExpiresAt *time.Time
}

func (t TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

func InspectToken(token string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if id, ok := claims["id"].(string); ok {
		info.Subject = id
	}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, nil
}
