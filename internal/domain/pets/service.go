package pets

import (
	"context"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/validation"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "pet not found")

// UserDirectory valida que un owner_id exista.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) error
}

type Service struct {
	repo  Repository
	users UserDirectory
	now   func() time.Time
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{
		repo:  repo,
		users: users,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name           string `json:"name" validate:"required,max=100"`
	Species        string `json:"species" validate:"required,max=50"`
	Breed          string `json:"breed" validate:"max=100"`
	Age            *int   `json:"age" validate:"omitempty,gte=0,lte=100"`
	Gender         Gender `json:"gender" validate:"omitempty,oneof=male female unknown"`
	MedicalHistory string `json:"medical_history"`
}

// Create da de alta un pet a nombre de ownerID. El handler ya decidió quién
// es el dueño (el principal, o el elegido por un admin).
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (Pet, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	if err := validation.Struct(in); err != nil {
		return Pet{}, err
	}
	if err := s.users.Exists(ctx, ownerID); err != nil {
		return Pet{}, ownerError(err)
	}

	gender := in.Gender
	if gender == "" {
		gender = GenderUnknown
	}

	now := s.now().UTC()
	p := Pet{
		OwnerID:        ownerID,
		Name:           in.Name,
		Species:        in.Species,
		Breed:          strings.TrimSpace(in.Breed),
		Age:            in.Age,
		Gender:         gender,
		MedicalHistory: strings.TrimSpace(in.MedicalHistory),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Pet{}, err
	}
	p.ID = id
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Pet, error) {
	return s.repo.List(ctx, filter)
}

// UpdateInput usa punteros: nil = no tocar.
type UpdateInput struct {
	OwnerID        *int64  `json:"owner_id"`
	Name           *string `json:"name" validate:"omitnil,min=1,max=100"`
	Species        *string `json:"species" validate:"omitnil,min=1,max=50"`
	Breed          *string `json:"breed" validate:"omitnil,max=100"`
	Age            *int    `json:"age" validate:"omitnil,gte=0,lte=100"`
	Gender         *Gender `json:"gender" validate:"omitnil,oneof=male female unknown"`
	MedicalHistory *string `json:"medical_history"`
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Pet, error) {
	validation.TrimStrings(in.Name, in.Species, in.Breed, in.MedicalHistory)
	if err := validation.Struct(in); err != nil {
		return Pet{}, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.OwnerID != nil && *in.OwnerID != p.OwnerID {
		if err := s.users.Exists(ctx, *in.OwnerID); err != nil {
			return Pet{}, ownerError(err)
		}
		p.OwnerID = *in.OwnerID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Breed != nil {
		p.Breed = *in.Breed
	}
	if in.Age != nil {
		p.Age = in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = *in.MedicalHistory
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func ownerError(err error) error {
	if apperr.KindOf(err) == apperr.KindNotFound {
		return apperr.New(apperr.KindInvalidInput, "owner_id does not reference an existing user")
	}
	return err
}
