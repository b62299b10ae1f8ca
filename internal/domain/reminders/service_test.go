package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
)

// filterRepo guarda el último filtro recibido.
type filterRepo struct {
	last ListFilter
}

func (r *filterRepo) Create(ctx context.Context, rem Reminder) (int64, error) { return 1, nil }

func (r *filterRepo) GetByID(ctx context.Context, id int64) (Reminder, error) {
	return Reminder{}, ErrNotFound
}

func (r *filterRepo) List(ctx context.Context, filter ListFilter) ([]Reminder, error) {
	r.last = filter
	return nil, nil
}

func (r *filterRepo) Update(ctx context.Context, rem Reminder) error { return nil }

func (r *filterRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *filterRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) { return 0, nil }

func TestService_Upcoming_Window(t *testing.T) {
	repo := &filterRepo{}
	svc := NewService(repo)
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	owner := int64(4)

	if _, err := svc.Upcoming(context.Background(), &owner, 7); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f := repo.last
	if f.OwnerID == nil || *f.OwnerID != 4 {
		t.Fatalf("expected owner filter 4, got %v", f.OwnerID)
	}
	if f.From == nil || !f.From.Equal(now) {
		t.Fatalf("expected from=%v, got %v", now, f.From)
	}
	if f.To == nil || !f.To.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("expected to=%v, got %v", now.AddDate(0, 0, 7), f.To)
	}
}

func TestService_Upcoming_RejectsNonPositiveDays(t *testing.T) {
	svc := NewService(&filterRepo{})

	for _, days := range []int{0, -1} {
		if _, err := svc.Upcoming(context.Background(), nil, days); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("days=%d: expected InvalidInput, got %v", days, err)
		}
	}
}

func TestService_Create_RequiresType(t *testing.T) {
	svc := NewService(&filterRepo{})

	_, err := svc.Create(context.Background(), CreateInput{
		PetID: 1,
		Type:  "   ",
		Date:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestService_Update_BlankTypeRejected(t *testing.T) {
	svc := NewService(&filterRepo{})

	blank := "   "
	if _, err := svc.Update(context.Background(), 1, UpdateInput{Type: &blank}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}
