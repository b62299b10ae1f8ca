package reminders

import (
	"context"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/platform/validation"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "reminder not found")

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
	PetID int64     `json:"pet_id" validate:"required,gt=0"`
	Type  string    `json:"type" validate:"required,max=50"`
	Date  time.Time `json:"date" validate:"required"`
	Notes string    `json:"notes" validate:"max=1000"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Reminder, error) {
	in.Type = strings.TrimSpace(in.Type)
	if err := validation.Struct(in); err != nil {
		return Reminder{}, err
	}

	now := s.now().UTC()
	rem := Reminder{
		PetID:     in.PetID,
		Type:      in.Type,
		Date:      in.Date.UTC(),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Create(ctx, rem)
	if err != nil {
		return Reminder{}, err
	}
	rem.ID = id
	return rem, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Reminder, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Reminder, error) {
	filter.Type = strings.TrimSpace(filter.Type)
	return s.repo.List(ctx, filter)
}

// Upcoming devuelve los recordatorios desde ahora hasta days días adelante.
func (s *Service) Upcoming(ctx context.Context, ownerID *int64, days int) ([]Reminder, error) {
	if days <= 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "days must be greater than 0")
	}
	from := s.now().UTC()
	to := from.AddDate(0, 0, days)
	return s.repo.List(ctx, ListFilter{OwnerID: ownerID, From: &from, To: &to})
}

type UpdateInput struct {
	PetID *int64     `json:"pet_id" validate:"omitnil,gt=0"`
	Type  *string    `json:"type" validate:"omitnil,min=1,max=50"`
	Date  *time.Time `json:"date"`
	Notes *string    `json:"notes" validate:"omitnil,max=1000"`
}

func (in UpdateInput) MovesPet(current Reminder) bool {
	return in.PetID != nil && *in.PetID != current.PetID
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Reminder, error) {
	validation.TrimStrings(in.Type, in.Notes)
	if err := validation.Struct(in); err != nil {
		return Reminder{}, err
	}

	rem, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, err
	}

	if in.PetID != nil {
		rem.PetID = *in.PetID
	}
	if in.Type != nil {
		rem.Type = *in.Type
	}
	if in.Date != nil {
		rem.Date = in.Date.UTC()
	}
	if in.Notes != nil {
		rem.Notes = *in.Notes
	}
	rem.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ParentLink(ctx context.Context, id int64) (authz.Link, error) {
	rem, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Link{}, err
	}
	return authz.ChildOf(authz.ResourcePet, rem.PetID), nil
}
