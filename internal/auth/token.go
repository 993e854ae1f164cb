package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails to parse or verify.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the user and session identifiers inside a bearer token.
// The token only names the session; the persisted session record remains
// the source of truth for validity.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
}

// GenerateToken signs an HS256 token naming the user and session. The
// token carries no expiry of its own: the session's sliding window keeps
// moving with activity, so a fixed exp claim would cut off a session that
// is still valid. Expiry is checked against the stored record instead.
func GenerateToken(userID, sessionID string, secret []byte, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID:    userID,
		SessionID: sessionID,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies an HS256 token and returns the user and session IDs.
func ParseToken(tokenString string, secret []byte) (userID, sessionID string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	if claims.UserID == "" || claims.SessionID == "" {
		return "", "", ErrInvalidToken
	}

	return claims.UserID, claims.SessionID, nil
}
