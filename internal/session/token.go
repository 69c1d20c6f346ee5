package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sid cookies are HS256-signed so a forged cookie cannot address another
// visitor's kv namespace.

var ErrBadSidToken = errors.New("invalid sid token")

func SignSID(secret, sid string) (string, error) {
	claims := jwt.MapClaims{
		"sub": sid,
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

func ParseSID(secret, raw string) (string, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !t.Valid {
		return "", ErrBadSidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrBadSidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrBadSidToken
	}
	return sub, nil
}
