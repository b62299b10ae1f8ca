// Package jwt implementa el codec de tokens bearer HS256.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// El payload va anidado en "user" para que clientes existentes sigan
// leyendo {user: {id, role}}.
type userClaim struct {
	ID   int64     `json:"id"`
	Role auth.Role `json:"role"`
}

type Claims struct {
	User userClaim `json:"user"`
	gojwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec falla si el secreto está vacío: el proceso no debe levantar sin él.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("jwt: ttl must be at least 1s, got %s", ttl)
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) Issue(p auth.Principal) (string, error) {
	now := c.now()
	claims := Claims{
		User: userClaim{ID: p.ID, Role: p.Role},
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(expiry(now, c.ttl)),
			IssuedAt:  gojwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// expiry redondea hacia arriba al segundo: exp viaja en segundos enteros y
// truncarlo haría vencer el token antes de ttl.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if t := exp.Truncate(time.Second); !t.Equal(exp) {
		return t.Add(time.Second)
	}
	return exp
}

func (c *Codec) Verify(token string) (auth.Principal, error) {
	var claims Claims
	_, err := gojwt.ParseWithClaims(token, &claims, func(t *gojwt.Token) (any, error) {
		return c.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return auth.Principal{}, apperr.ErrTokenExpired
		}
		return auth.Principal{}, apperr.ErrTokenMalformed
	}

	if claims.User.ID <= 0 || claims.User.Role == "" {
		return auth.Principal{}, apperr.ErrTokenMalformed
	}

	return auth.Principal{ID: claims.User.ID, Role: claims.User.Role}, nil
}
