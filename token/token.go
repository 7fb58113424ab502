package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/emberdating/ember/config"
	"github.com/emberdating/ember/database"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims embedded in issued tokens: the user id as
// the registered subject plus the username.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// UserID returns the numeric user id encoded in the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return safecast.ToUint(id)
}

// Issuer signs and verifies identity tokens with a symmetric secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates a new token issuer from the auth configuration.
func NewIssuer(cfg *config.AuthConfig) *Issuer {
	return &Issuer{
		secret: []byte(cfg.TokenSecret),
		ttl:    time.Duration(cfg.TokenTTL) * time.Hour,
	}
}

// Issue creates a signed token for the user, valid for the configured TTL.
func (i *Issuer) Issue(user *database.User) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Name: user.Username,
	})

	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	return claims, nil
}
