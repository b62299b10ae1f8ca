package reports

import (
	"context"
	"strings"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/users"
)

// Service arma los reportes administrativos. La autorización la hace el handler.
type Service struct {
	repo  Repository
	pets  PetLister
	users UserLister
}

func NewService(repo Repository, pets PetLister, users UserLister) *Service {
	return &Service{repo: repo, pets: pets, users: users}
}

func (s *Service) Appointments(ctx context.Context, filter AppointmentFilter) ([]AppointmentRow, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperr.New(apperr.KindInvalidInput, "end_date must not be before start_date")
	}
	filter.Provider = strings.TrimSpace(filter.Provider)
	filter.PetSpecies = strings.TrimSpace(filter.PetSpecies)
	return s.repo.Appointments(ctx, filter)
}

func (s *Service) Pets(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	if filter.MinAge != nil && filter.MaxAge != nil && *filter.MaxAge < *filter.MinAge {
		return nil, apperr.New(apperr.KindInvalidInput, "max_age must not be below min_age")
	}
	return s.pets.List(ctx, filter)
}

func (s *Service) Users(ctx context.Context, filter users.ListFilter) ([]users.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, "role must be one of: admin user")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperr.New(apperr.KindInvalidInput, "end_date must not be before start_date")
	}
	return s.users.List(ctx, filter)
}
