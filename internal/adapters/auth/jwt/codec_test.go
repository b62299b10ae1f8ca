package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-please-change"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T, ttl time.Duration) (*Codec, *fakeClock) {
	t.Helper()
	c, err := NewCodec(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	clk := &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	return c.WithClock(clk.Now), clk
}

func TestCodec_RoundTrip(t *testing.T) {
	c, _ := newTestCodec(t, time.Hour)

	tok, err := c.Issue(auth.Principal{ID: 7, Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.ID != 7 || p.Role != auth.RoleAdmin {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestCodec_ExpiresAfterTTL(t *testing.T) {
	c, clk := newTestCodec(t, time.Second)

	tok, err := c.Issue(auth.Principal{ID: 1, Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clk.Advance(2 * time.Second)

	_, err = c.Verify(tok)
	if !errors.Is(err, apperr.ErrTokenExpired) {
		t.Fatalf("expected TokenExpired, got %v", err)
	}
}

func TestCodec_ExpiredAtExactInstant(t *testing.T) {
	c, clk := newTestCodec(t, time.Hour)

	tok, _ := c.Issue(auth.Principal{ID: 1, Role: auth.RoleUser})
	clk.Advance(time.Hour)

	if _, err := c.Verify(tok); !errors.Is(err, apperr.ErrTokenExpired) {
		t.Fatalf("expected TokenExpired when now == exp, got %v", err)
	}
}

func TestCodec_FractionalStartNeverExpiresEarly(t *testing.T) {
	c, err := NewCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	clk := &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 900_000_000, time.UTC)}
	c = c.WithClock(clk.Now)

	tok, err := c.Issue(auth.Principal{ID: 1, Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	issued := clk.t

	clk.t = issued.Add(time.Hour - 500*time.Millisecond)
	if _, err := c.Verify(tok); err != nil {
		t.Fatalf("token must be valid before ttl elapsed: %v", err)
	}
	clk.t = issued.Add(time.Hour - time.Nanosecond)
	if _, err := c.Verify(tok); err != nil {
		t.Fatalf("token must be valid right before ttl: %v", err)
	}

	// exp queda en 13:00:01, el segundo siguiente a issue+ttl
	clk.t = time.Date(2026, 1, 10, 13, 0, 1, 0, time.UTC)
	if _, err := c.Verify(tok); !errors.Is(err, apperr.ErrTokenExpired) {
		t.Fatalf("expected TokenExpired after rounded exp, got %v", err)
	}
}

func TestExpiry_RoundsUpToSecond(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	if got := expiry(base, time.Hour); !got.Equal(base.Add(time.Hour)) {
		t.Fatalf("whole second start must keep exact exp, got %v", got)
	}

	start := base.Add(200 * time.Millisecond)
	got := expiry(start, time.Second)
	if got.Before(start.Add(time.Second)) {
		t.Fatalf("exp %v earlier than issue+ttl", got)
	}
	if want := base.Add(2 * time.Second); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCodec_WrongSecretIsMalformed(t *testing.T) {
	c, _ := newTestCodec(t, time.Hour)
	other, _ := NewCodec("another-secret", time.Hour)

	tok, _ := other.Issue(auth.Principal{ID: 1, Role: auth.RoleUser})
	if _, err := c.Verify(tok); !errors.Is(err, apperr.ErrTokenMalformed) {
		t.Fatalf("expected TokenMalformed, got %v", err)
	}
}

func TestCodec_TamperedPayloadIsMalformed(t *testing.T) {
	c, _ := newTestCodec(t, time.Hour)
	tok, _ := c.Issue(auth.Principal{ID: 1, Role: auth.RoleUser})

	parts := strings.Split(tok, ".")
	forged, _ := c.Issue(auth.Principal{ID: 1, Role: auth.RoleAdmin})
	parts[1] = strings.Split(forged, ".")[1]

	if _, err := c.Verify(strings.Join(parts, ".")); !errors.Is(err, apperr.ErrTokenMalformed) {
		t.Fatalf("expected TokenMalformed for swapped payload, got %v", err)
	}
}

func TestCodec_RejectsNoneAlgorithm(t *testing.T) {
	c, clk := newTestCodec(t, time.Hour)

	claims := Claims{
		User: userClaim{ID: 1, Role: auth.RoleAdmin},
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(clk.Now().Add(time.Hour)),
		},
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := c.Verify(tok); !errors.Is(err, apperr.ErrTokenMalformed) {
		t.Fatalf("expected TokenMalformed for alg none, got %v", err)
	}
}

func TestCodec_MissingFieldsIsMalformed(t *testing.T) {
	c, clk := newTestCodec(t, time.Hour)

	cases := map[string]Claims{
		"no user id": {
			User:             userClaim{Role: auth.RoleUser},
			RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(clk.Now().Add(time.Hour))},
		},
		"no role": {
			User:             userClaim{ID: 3},
			RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(clk.Now().Add(time.Hour))},
		},
		"no exp": {
			User: userClaim{ID: 3, Role: auth.RoleUser},
		},
	}

	for name, claims := range cases {
		tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		if _, err := c.Verify(tok); !errors.Is(err, apperr.ErrTokenMalformed) {
			t.Fatalf("%s: expected TokenMalformed, got %v", name, err)
		}
	}
}

func TestCodec_GarbageIsMalformed(t *testing.T) {
	c, _ := newTestCodec(t, time.Hour)
	if _, err := c.Verify("not-a-token"); !errors.Is(err, apperr.ErrTokenMalformed) {
		t.Fatalf("expected TokenMalformed, got %v", err)
	}
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	if _, err := NewCodec("  ", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewCodec("x", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
	if _, err := NewCodec("x", 500*time.Millisecond); err == nil {
		t.Fatalf("expected error for sub-second ttl")
	}
}
