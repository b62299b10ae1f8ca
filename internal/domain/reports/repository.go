package reports

import (
	"context"
	"time"

	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/users"
)

// AppointmentRow combina el turno con datos del pet.
type AppointmentRow struct {
	AppointmentID int64
	Date          time.Time
	Provider      string
	Reason        string
	PetID         int64
	PetName       string
	PetSpecies    string
	OwnerID       int64
}

type AppointmentFilter struct {
	From       *time.Time
	To         *time.Time
	Provider   string
	PetSpecies string
}

type Repository interface {
	Appointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentRow, error)
}

type PetLister interface {
	List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error)
}

type UserLister interface {
	List(ctx context.Context, filter users.ListFilter) ([]users.User, error)
}
