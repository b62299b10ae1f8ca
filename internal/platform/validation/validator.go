// Package validation envuelve go-playground/validator con una instancia
// compartida y traduce los errores a apperr.InvalidInput.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"pet-clinic-api/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Reportar el nombre json del campo, que es lo que ve el cliente.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct valida v y devuelve un *apperr.Error InvalidInput con el primer
// campo inválido, o nil.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindInvalidInput, "invalid input", err)
	}
	return apperr.New(apperr.KindInvalidInput, message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// TrimStrings recorta en el lugar los strings presentes (punteros no nil).
// Va antes de Struct para que min= vea el valor que se va a guardar.
func TrimStrings(ptrs ...*string) {
	for _, p := range ptrs {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
