package medications

import (
	"context"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/platform/validation"
)

var (
	ErrNotFound  = apperr.New(apperr.KindNotFound, "medication not found")
	errDateRange = apperr.New(apperr.KindInvalidInput, "end_date must not be before start_date")
)

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
	PetID     int64      `json:"pet_id" validate:"required,gt=0"`
	Name      string     `json:"name" validate:"required,max=100"`
	Dosage    string     `json:"dosage" validate:"max=50"`
	DoseUnit  string     `json:"dose_unit" validate:"max=20"`
	Frequency string     `json:"frequency" validate:"max=100"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	Notes     string     `json:"notes" validate:"max=1000"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return Medication{}, err
	}

	m := Medication{
		PetID:     in.PetID,
		Name:      in.Name,
		Dosage:    strings.TrimSpace(in.Dosage),
		DoseUnit:  strings.TrimSpace(in.DoseUnit),
		Frequency: strings.TrimSpace(in.Frequency),
		StartDate: in.StartDate.UTC(),
		EndDate:   utcPtr(in.EndDate),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now().UTC(),
	}
	if err := checkRange(m); err != nil {
		return Medication{}, err
	}

	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return Medication{}, err
	}
	m.ID = id
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Medication, error) {
	return s.repo.GetByID(ctx, id)
}

// List con active=true descarta los tratamientos terminados.
func (s *Service) List(ctx context.Context, filter ListFilter, activeOnly bool) ([]Medication, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	items, err := s.repo.List(ctx, filter)
	if err != nil || !activeOnly {
		return items, err
	}

	now := s.now().UTC()
	out := items[:0]
	for _, m := range items {
		if m.ActiveAt(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

type UpdateInput struct {
	PetID     *int64     `json:"pet_id" validate:"omitnil,gt=0"`
	Name      *string    `json:"name" validate:"omitnil,min=1,max=100"`
	Dosage    *string    `json:"dosage" validate:"omitnil,max=50"`
	DoseUnit  *string    `json:"dose_unit" validate:"omitnil,max=20"`
	Frequency *string    `json:"frequency" validate:"omitnil,max=100"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Notes     *string    `json:"notes" validate:"omitnil,max=1000"`
}

func (in UpdateInput) MovesPet(current Medication) bool {
	return in.PetID != nil && *in.PetID != current.PetID
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Medication, error) {
	validation.TrimStrings(in.Name, in.Dosage, in.DoseUnit, in.Frequency, in.Notes)
	if err := validation.Struct(in); err != nil {
		return Medication{}, err
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}

	if in.PetID != nil {
		m.PetID = *in.PetID
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Dosage != nil {
		m.Dosage = *in.Dosage
	}
	if in.DoseUnit != nil {
		m.DoseUnit = *in.DoseUnit
	}
	if in.Frequency != nil {
		m.Frequency = *in.Frequency
	}
	if in.StartDate != nil {
		m.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		m.EndDate = utcPtr(in.EndDate)
	}
	if in.Notes != nil {
		m.Notes = *in.Notes
	}
	if err := checkRange(m); err != nil {
		return Medication{}, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ParentLink(ctx context.Context, id int64) (authz.Link, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Link{}, err
	}
	return authz.ChildOf(authz.ResourcePet, m.PetID), nil
}

func checkRange(m Medication) error {
	if m.EndDate != nil && m.EndDate.Before(m.StartDate) {
		return errDateRange
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
