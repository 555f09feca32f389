package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session payload carried by a signed token, letting CLI
// invocations reuse an authenticated session without resending credentials.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned when a session token fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// IssueToken signs a session into a compact token valid for ttl.
func IssueToken(sess Session, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	if !ValidRole(sess.Role) {
		return "", fmt.Errorf("cannot issue token for unknown role %q", sess.Role)
	}
	now := time.Now()
	claims := Claims{
		Role: sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken validates a token and recovers the session it carries.
func VerifyToken(token string, secret []byte) (Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !ValidRole(claims.Role) {
		return Session{}, ErrInvalidToken
	}
	return Session{Username: claims.Subject, Role: claims.Role}, nil
}
