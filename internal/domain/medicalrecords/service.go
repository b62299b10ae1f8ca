package medicalrecords

import (
	"context"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/platform/validation"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "medical record not found")

const (
	DefaultLimit = 50
	MaxLimit     = 200
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
	PetID       int64      `json:"pet_id" validate:"required,gt=0"`
	RecordDate  *time.Time `json:"record_date"`
	Description string     `json:"description" validate:"required,max=4000"`
}

// Create usa la fecha actual si no viene record_date.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	date := now
	if in.RecordDate != nil {
		date = in.RecordDate.UTC()
	}

	rec := Record{
		PetID:       in.PetID,
		RecordDate:  date,
		Description: in.Description,
		CreatedAt:   now,
	}

	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	rec.ID = id
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	filter.Limit = clampLimit(filter.Limit)
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

type UpdateInput struct {
	PetID       *int64     `json:"pet_id" validate:"omitnil,gt=0"`
	RecordDate  *time.Time `json:"record_date"`
	Description *string    `json:"description" validate:"omitnil,min=1,max=4000"`
}

func (in UpdateInput) MovesPet(current Record) bool {
	return in.PetID != nil && *in.PetID != current.PetID
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Record, error) {
	validation.TrimStrings(in.Description)
	if err := validation.Struct(in); err != nil {
		return Record{}, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}

	if in.PetID != nil {
		rec.PetID = *in.PetID
	}
	if in.RecordDate != nil {
		rec.RecordDate = in.RecordDate.UTC()
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ParentLink(ctx context.Context, id int64) (authz.Link, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Link{}, err
	}
	return authz.ChildOf(authz.ResourcePet, rec.PetID), nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}
