package reminders

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, rem Reminder) (int64, error)
	GetByID(ctx context.Context, id int64) (Reminder, error)
	List(ctx context.Context, filter ListFilter) ([]Reminder, error)
	Update(ctx context.Context, rem Reminder) error
	Delete(ctx context.Context, id int64) error
	DeleteByPet(ctx context.Context, petID int64) (int64, error)
}

// ListFilter ordena por Date ascendente. Type compara sin distinguir mayúsculas.
type ListFilter struct {
	OwnerID *int64
	PetID   *int64
	Type    string
	From    *time.Time
	To      *time.Time
}
