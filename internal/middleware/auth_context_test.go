package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/logger"
	"pet-clinic-api/internal/ports/auth"
)

// fakeVerifier acepta sólo "good" y "old".
type fakeVerifier struct {
	calls int
}

func (v *fakeVerifier) Verify(token string) (auth.Principal, error) {
	v.calls++
	switch token {
	case "good":
		return auth.Principal{ID: 1, Role: auth.RoleUser}, nil
	case "old":
		return auth.Principal{}, apperr.ErrTokenExpired
	default:
		return auth.Principal{}, apperr.ErrTokenMalformed
	}
}

func protected(v auth.TokenVerifier) http.Handler {
	return Authenticate(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipal(r.Context())
		if !ok {
			http.Error(w, "no principal", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": p.ID, "role": p.Role})
	}))
}

func TestAuthenticate(t *testing.T) {
	cases := []struct {
		name       string
		header     *string
		wantStatus int
		wantKind   string
		wantCalls  int
	}{
		{"no header", nil, http.StatusUnauthorized, "MissingAuthHeader", 0},
		{"empty header", strPtr(""), http.StatusUnauthorized, "MissingToken", 0},
		{"no bearer scheme", strPtr("good"), http.StatusUnauthorized, "MissingToken", 0},
		{"basic scheme", strPtr("Basic Zm9vOmJhcg=="), http.StatusUnauthorized, "MissingToken", 0},
		{"bearer without token", strPtr("Bearer   "), http.StatusUnauthorized, "MissingToken", 0},
		{"expired", strPtr("Bearer old"), http.StatusUnauthorized, "TokenExpired", 1},
		{"malformed", strPtr("Bearer xyz"), http.StatusUnauthorized, "TokenMalformed", 1},
		{"ok", strPtr("Bearer good"), http.StatusOK, "", 1},
		{"ok lowercase scheme", strPtr("bearer good"), http.StatusOK, "", 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := &fakeVerifier{}
			req := httptest.NewRequest(http.MethodGet, "/pets/10", nil)
			if c.header != nil {
				req.Header.Set("Authorization", *c.header)
			}
			rr := httptest.NewRecorder()

			protected(v).ServeHTTP(rr, req)

			if rr.Code != c.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", c.wantStatus, rr.Code, rr.Body.String())
			}
			if v.calls != c.wantCalls {
				t.Fatalf("expected %d verify calls, got %d", c.wantCalls, v.calls)
			}
			if c.wantKind == "" {
				return
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["error"] != c.wantKind {
				t.Fatalf("expected kind %s, got %v", c.wantKind, body)
			}
		})
	}
}

func TestRequestLogger_NeverLogsAuthorization(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})

	h := RequestLogger(log)(protected(&fakeVerifier{}))
	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, `"status":200`) {
		t.Fatalf("expected request line, got %s", out)
	}
	if strings.Contains(out, "good") {
		t.Fatalf("token leaked into log: %s", out)
	}
}

func TestRecover_ReturnsJSON500(t *testing.T) {
	h := Recover(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error":"Internal"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func strPtr(s string) *string { return &s }
