// Package identity resolves which owner's bookmarks a session works on.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoIdentity   = errors.New("identity: no owner configured")
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Identity is the authenticated owner of a session.
type Identity struct {
	OwnerID string
}

// Provider yields the identity for the current session.
type Provider interface {
	Identity(ctx context.Context) (Identity, error)
}

// Static always answers with the same owner.
type Static string

func (s Static) Identity(context.Context) (Identity, error) {
	if s == "" {
		return Identity{}, ErrNoIdentity
	}
	return Identity{OwnerID: string(s)}, nil
}

// Claims are the token claims; the owner is the standard subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Token validates an HS256 token issued by the sync service.
type Token struct {
	raw    string
	secret []byte
}

func NewToken(raw string, secret []byte) *Token {
	return &Token{raw: raw, secret: secret}
}

func (t *Token) Identity(context.Context) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(t.raw, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{OwnerID: claims.Subject}, nil
}

// IssueToken signs a token for owner. A zero validity never expires.
func IssueToken(owner string, secret []byte, validity time.Duration) (string, error) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:  owner,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validity))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Resolve prefers a token when one is configured and falls back to the
// static owner.
func Resolve(ctx context.Context, owner, token string, secret []byte) (Identity, error) {
	var p Provider = Static(owner)
	if token != "" {
		p = NewToken(token, secret)
	}
	return p.Identity(ctx)
}
