package appointments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Appointment) (int64, error)
	GetByID(ctx context.Context, id int64) (Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
	Update(ctx context.Context, a Appointment) error
	Delete(ctx context.Context, id int64) error
	DeleteByPet(ctx context.Context, petID int64) (int64, error)
}

// ListFilter: OwnerID filtra por el dueño del pet (join con pets).
type ListFilter struct {
	OwnerID  *int64
	PetID    *int64
	From     *time.Time
	To       *time.Time
	Provider string
}
