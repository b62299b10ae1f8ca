package auth

// TokenIssuer firma un Principal en un bearer token con expiración.
type TokenIssuer interface {
	Issue(p Principal) (string, error)
}

// TokenVerifier valida un token y devuelve el Principal embebido.
// Los errores son *apperr.Error de tipo TokenExpired o TokenMalformed.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
