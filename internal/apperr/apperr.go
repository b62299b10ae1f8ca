// Package apperr define los tipos de error que viajan desde el núcleo de
// autorización y los repositorios hasta los handlers HTTP.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindMissingAuthHeader  Kind = "MissingAuthHeader"
	KindMissingToken       Kind = "MissingToken"
	KindTokenMalformed     Kind = "TokenMalformed"
	KindTokenExpired       Kind = "TokenExpired"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindNotFound           Kind = "NotFound"
	KindForbidden          Kind = "Forbidden"
	KindInvalidInput       Kind = "InvalidInput"
	KindConflict           Kind = "Conflict"
	KindCascadeFailed      Kind = "CascadeFailed"
	KindStoreUnavailable   Kind = "StoreUnavailable"
	KindInternal           Kind = "Internal"
)

// Error es el error tipado del servicio. Message es seguro para mostrar al
// cliente; Err (opcional) es la causa interna y nunca se serializa.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind, así errors.Is(err, apperr.ErrNotFound) funciona con
// cualquier NotFound sin importar el mensaje.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingAuthHeader  = New(KindMissingAuthHeader, "authorization header required")
	ErrMissingToken       = New(KindMissingToken, "bearer token required")
	ErrTokenMalformed     = New(KindTokenMalformed, "invalid token")
	ErrTokenExpired       = New(KindTokenExpired, "token expired")
	ErrInvalidCredentials = New(KindInvalidCredentials, "invalid credentials")
	ErrNotFound           = New(KindNotFound, "not found")
	ErrForbidden          = New(KindForbidden, "you do not have permission")
	ErrInvalidInput       = New(KindInvalidInput, "invalid input")
	ErrConflict           = New(KindConflict, "already exists")
	ErrCascadeFailed      = New(KindCascadeFailed, "delete could not be completed")
	ErrStoreUnavailable   = New(KindStoreUnavailable, "store unavailable")
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf devuelve el Kind del primer *Error de la cadena, o KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage devuelve el mensaje seguro para el cliente.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingAuthHeader, KindMissingToken, KindTokenMalformed, KindTokenExpired, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
