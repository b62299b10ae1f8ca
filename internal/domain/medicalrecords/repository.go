package medicalrecords

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, rec Record) (int64, error)
	GetByID(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id int64) error
	DeleteByPet(ctx context.Context, petID int64) (int64, error)
}

// ListFilter ordena por RecordDate descendente. Limit 0 significa sin límite.
type ListFilter struct {
	OwnerID *int64
	PetID   *int64
	From    *time.Time
	To      *time.Time
	Query   string
	Limit   int
}
