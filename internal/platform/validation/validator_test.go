package validation

import (
	"errors"
	"strings"
	"testing"

	"pet-clinic-api/internal/apperr"
)

type sample struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Gender   string `json:"gender" validate:"omitempty,oneof=male female unknown"`
}

func TestStruct_OK(t *testing.T) {
	if err := Struct(sample{Username: "ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_ReportsJSONFieldName(t *testing.T) {
	err := Struct(sample{Username: "ana", Email: "nope"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if msg := apperr.PublicMessage(err); !strings.HasPrefix(msg, "email ") {
		t.Fatalf("expected message about email, got %q", msg)
	}
}

func TestStruct_OneOf(t *testing.T) {
	err := Struct(sample{Username: "ana", Email: "ana@example.com", Gender: "x"})
	if apperr.PublicMessage(err) != "gender must be one of: male female unknown" {
		t.Fatalf("unexpected message %q", apperr.PublicMessage(err))
	}
}
