package users

import (
	"context"
	"time"

	"pet-clinic-api/internal/ports/auth"
)

// Repository guarda usuarios. Username y email son únicos (sin distinguir
// mayúsculas); Create y Update devuelven Conflict si se repiten.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context, filter ListFilter) ([]User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id int64) error
}

type ListFilter struct {
	// ID restringe a un único usuario (listado de un no-admin).
	ID   *int64
	Role auth.Role
	From *time.Time
	To   *time.Time
}
