package appointments

import (
	"context"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/platform/validation"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "appointment not found")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	PetID    int64     `json:"pet_id" validate:"required,gt=0"`
	Date     time.Time `json:"date" validate:"required"`
	Provider string    `json:"provider" validate:"required,max=100"`
	Reason   string    `json:"reason" validate:"max=500"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	in.Provider = strings.TrimSpace(in.Provider)
	if err := validation.Struct(in); err != nil {
		return Appointment{}, err
	}

	now := s.now().UTC()
	a := Appointment{
		PetID:     in.PetID,
		Date:      in.Date.UTC(),
		Provider:  in.Provider,
		Reason:    strings.TrimSpace(in.Reason),
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return Appointment{}, err
	}
	a.ID = id
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	return s.repo.List(ctx, filter)
}

type UpdateInput struct {
	PetID    *int64     `json:"pet_id" validate:"omitnil,gt=0"`
	Date     *time.Time `json:"date"`
	Provider *string    `json:"provider" validate:"omitnil,min=1,max=100"`
	Reason   *string    `json:"reason" validate:"omitnil,max=500"`
}

// MovesPet indica si la actualización cambia el pet referenciado, lo que
// exige permiso de alta sobre el pet nuevo.
func (in UpdateInput) MovesPet(current Appointment) bool {
	return in.PetID != nil && *in.PetID != current.PetID
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Appointment, error) {
	validation.TrimStrings(in.Provider, in.Reason)
	if err := validation.Struct(in); err != nil {
		return Appointment{}, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}

	if in.PetID != nil {
		a.PetID = *in.PetID
	}
	if in.Date != nil {
		a.Date = in.Date.UTC()
	}
	if in.Provider != nil {
		a.Provider = *in.Provider
	}
	if in.Reason != nil {
		a.Reason = *in.Reason
	}
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ParentLink: el dueño de un turno es el dueño de su pet.
func (s *Service) ParentLink(ctx context.Context, id int64) (authz.Link, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Link{}, err
	}
	return authz.ChildOf(authz.ResourcePet, a.PetID), nil
}
