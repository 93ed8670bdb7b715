package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
)

type (
	// Tokens issues and verifies HS256 bearer tokens carrying a user id.
	// A zero ttl issues tokens without an exp claim.
	Tokens struct {
		secret []byte
		ttl    time.Duration
	}

	tokenClaims struct {
		UserID string `json:"userId"`
		jwt.RegisteredClaims
	}
)

func NewTokens(cfg *config.Config) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}
}

func (t *Tokens) Issue(userID string) (string, error) {
	claims := tokenClaims{UserID: userID}
	if t.ttl != 0 {
		now := time.Now()
		claims.IssuedAt = jwt.NewNumericDate(now)
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify returns the user id of a valid token. Every failure, including an
// empty token, is ErrUnauthorized.
func (t *Tokens) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	claims := tokenClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.UserID == "" {
		return "", ErrUnauthorized
	}
	return claims.UserID, nil
}
