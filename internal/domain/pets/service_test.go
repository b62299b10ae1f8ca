package pets

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
)

type testRepo struct {
	byID map[int64]Pet
	seq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) (int64, error) {
	r.seq++
	p.ID = r.seq
	r.byID[p.ID] = p
	return p.ID, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if filter.OwnerID != nil && p.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	for id, p := range r.byID {
		if p.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// testUsers conoce un conjunto fijo de ids.
type testUsers map[int64]bool

func (u testUsers) Exists(ctx context.Context, id int64) error {
	if !u[id] {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, testUsers{1: true, 2: true})
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestService_Create_DefaultsGender(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), 1, CreateInput{Name: " Rex ", Species: "dog"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Gender != GenderUnknown {
		t.Fatalf("expected gender unknown, got %q", p.Gender)
	}
	if p.Name != "Rex" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.OwnerID != 1 || p.ID == 0 {
		t.Fatalf("unexpected pet %+v", p)
	}
}

func TestService_Create_UnknownOwner(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Create(context.Background(), 42, CreateInput{Name: "Rex", Species: "dog"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("pet must not be stored")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()
	neg := -1

	cases := map[string]CreateInput{
		"missing name":   {Species: "dog"},
		"missing species":{Name: "Rex"},
		"negative age":   {Name: "Rex", Species: "dog", Age: &neg},
		"bad gender":     {Name: "Rex", Species: "dog", Gender: Gender("other")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), 1, in); !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Update_ChangeOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, CreateInput{Name: "Rex", Species: "dog"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	missing := int64(99)
	if _, err := svc.Update(ctx, p.ID, UpdateInput{OwnerID: &missing}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}

	other := int64(2)
	got, err := svc.Update(ctx, p.ID, UpdateInput{OwnerID: &other})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.OwnerID != 2 {
		t.Fatalf("expected owner 2, got %d", got.OwnerID)
	}

	link, err := svc.OwnerLink(ctx, p.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if link.OwnerID == nil || *link.OwnerID != 2 || link.Parent != "" {
		t.Fatalf("unexpected link %+v", link)
	}
}

func TestService_OwnerLink_NotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.OwnerLink(context.Background(), 7); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestService_Update_BlankNameRejected(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, CreateInput{Name: "Luna", Species: "cat"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	blank := "   "
	if _, err := svc.Update(ctx, p.ID, UpdateInput{Name: &blank}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, UpdateInput{Species: &blank}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for species, got %v", err)
	}
	empty := Gender("")
	if _, err := svc.Update(ctx, p.ID, UpdateInput{Gender: &empty}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for empty gender, got %v", err)
	}
	if got := repo.byID[p.ID]; got.Name != "Luna" || got.Species != "cat" || got.Gender != GenderUnknown {
		t.Fatalf("pet must stay unchanged, got %+v", got)
	}

	name := "  Lunita "
	got, err := svc.Update(ctx, p.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Name != "Lunita" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
}
