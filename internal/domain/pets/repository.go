package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) (int64, error)
	GetByID(ctx context.Context, id int64) (Pet, error)
	List(ctx context.Context, filter ListFilter) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id int64) error
	IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)
}

// ListFilter: OwnerID nil = todos los dueños.
type ListFilter struct {
	OwnerID *int64
	Species string
	Gender  Gender
	MinAge  *int
	MaxAge  *int
}
