// Package httpx reúne los helpers de respuesta que antes estaban duplicados
// en cada handler.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"

	"github.com/go-chi/chi/v5"
)

// ErrorResponse es el cuerpo de todas las respuestas de error.
type ErrorResponse struct {
	Error string `json:"error"`
	Msg   string `json:"msg"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError serializa un error tipado como {"error": kind, "msg": mensaje}.
// Los errores sin tipo salen como 500 sin detalle.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.HTTPStatus(err), ErrorResponse{
		Error: string(apperr.KindOf(err)),
		Msg:   apperr.PublicMessage(err),
	})
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "invalid json", err)
	}
	return nil
}

// IDParam lee un id numérico de la ruta.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindInvalidInput, name+" must be a positive integer")
	}
	return id, nil
}

// OptionalInt64Query devuelve nil si el parámetro no viene.
func OptionalInt64Query(r *http.Request, name string) (*int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, name+" must be an integer")
	}
	return &n, nil
}

const dateLayout = "2006-01-02"

// OptionalTimeQuery acepta RFC3339 o YYYY-MM-DD (medianoche UTC).
func OptionalTimeQuery(r *http.Request, name string) (*time.Time, error) {
	t, _, err := parseTimeQuery(r, name)
	return t, err
}

// OptionalEndTimeQuery es para cotas superiores inclusivas: una fecha sola
// cubre el día completo, hasta 23:59:59.999999999 UTC.
func OptionalEndTimeQuery(r *http.Request, name string) (*time.Time, error) {
	t, dateOnly, err := parseTimeQuery(r, name)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &end, nil
}

func parseTimeQuery(r *http.Request, name string) (*time.Time, bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, false, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, false, apperr.New(apperr.KindInvalidInput, name+" must be RFC3339 or YYYY-MM-DD")
	}
	return &t, true, nil
}

// OptionalIntQuery devuelve nil si el parámetro no viene.
func OptionalIntQuery(r *http.Request, name string) (*int, error) {
	n, err := OptionalInt64Query(r, name)
	if err != nil || n == nil {
		return nil, err
	}
	v := int(*n)
	return &v, nil
}
