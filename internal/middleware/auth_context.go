package middleware

import (
	"context"
	"net/http"
	"strings"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/httpx"
	"pet-clinic-api/internal/ports/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// Authenticate exige un bearer token válido. Sin él la request termina en 401:
//   - sin header Authorization => MissingAuthHeader
//   - header sin "Bearer <token>" o token vacío => MissingToken
//   - token inválido => el error del verifier (TokenExpired / TokenMalformed)
func Authenticate(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := Extract(verifier, r.Header)
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// Extract hace el chequeo de una sola pasada sobre los headers.
func Extract(verifier auth.TokenVerifier, h http.Header) (auth.Principal, error) {
	values, present := h["Authorization"]
	if !present || len(values) == 0 {
		return auth.Principal{}, apperr.ErrMissingAuthHeader
	}

	token, ok := bearerToken(values[0])
	if !ok {
		return auth.Principal{}, apperr.ErrMissingToken
	}

	return verifier.Verify(token)
}

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
