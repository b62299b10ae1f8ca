package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) (int64, error)
	GetByID(ctx context.Context, id int64) (Medication, error)
	List(ctx context.Context, filter ListFilter) ([]Medication, error)
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id int64) error
	DeleteByPet(ctx context.Context, petID int64) (int64, error)
}

// ListFilter ordena por StartDate descendente.
type ListFilter struct {
	OwnerID *int64
	PetID   *int64
	Name    string
}
