package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrMissingAuthHeader, http.StatusUnauthorized},
		{ErrMissingToken, http.StatusUnauthorized},
		{ErrTokenMalformed, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{New(KindNotFound, "pet not found"), http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{ErrCascadeFailed, http.StatusInternalServerError},
		{ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(KindNotFound, "reminder not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match by kind")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("NotFound must not match Forbidden")
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrap(KindStoreUnavailable, "store unavailable", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be reachable")
	}
	if KindOf(err) != KindStoreUnavailable {
		t.Fatalf("unexpected kind %s", KindOf(err))
	}
	if PublicMessage(err) != "store unavailable" {
		t.Fatalf("public message must not include cause, got %q", PublicMessage(err))
	}
}

func TestPublicMessage_Untyped(t *testing.T) {
	if got := PublicMessage(errors.New("pq: password=secret")); got != "internal error" {
		t.Fatalf("untyped errors must not leak, got %q", got)
	}
}
