package medications

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
)

type testRepo struct {
	byID map[int64]Medication
	seq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) (int64, error) {
	r.seq++
	m.ID = r.seq
	r.byID[m.ID] = m
	return m.ID, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Medication, error) {
	out := make([]Medication, 0, len(r.byID))
	for id := int64(1); id <= r.seq; id++ {
		if m, ok := r.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	var n int64
	for id, m := range r.byID {
		if m.PetID == petID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

var testNow = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func TestService_Create_RejectsInvertedRange(t *testing.T) {
	svc, repo := newTestService()
	end := day(-5)

	_, err := svc.Create(context.Background(), CreateInput{
		PetID:     1,
		Name:      "amoxicilina",
		StartDate: day(0),
		EndDate:   &end,
	})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("medication must not be stored")
	}
}

func TestService_List_ActiveOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	finished := day(-2)
	current := day(3)
	inputs := []CreateInput{
		{PetID: 1, Name: "terminado", StartDate: day(-10), EndDate: &finished},
		{PetID: 1, Name: "vigente", StartDate: day(-1), EndDate: &current},
		{PetID: 1, Name: "sin fin", StartDate: day(-30)},
		{PetID: 1, Name: "futuro", StartDate: day(5)},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	all, err := svc.List(ctx, ListFilter{}, false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4, got %d", len(all))
	}

	active, err := svc.List(ctx, ListFilter{}, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active, got %d", len(active))
	}
	for _, m := range active {
		if m.Name != "vigente" && m.Name != "sin fin" {
			t.Fatalf("unexpected active medication %q", m.Name)
		}
	}
}

func TestService_Update_KeepsRangeValid(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{PetID: 1, Name: "ivermectina", StartDate: day(0)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	before := day(-1)
	if _, err := svc.Update(ctx, m.ID, UpdateInput{EndDate: &before}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}

	pet := int64(2)
	if !(UpdateInput{PetID: &pet}).MovesPet(m) {
		t.Fatalf("expected MovesPet")
	}
	got, err := svc.Update(ctx, m.ID, UpdateInput{PetID: &pet})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.PetID != 2 {
		t.Fatalf("expected pet 2, got %d", got.PetID)
	}

	link, err := svc.ParentLink(ctx, m.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if link.ParentID != 2 || link.OwnerID != nil {
		t.Fatalf("unexpected link %+v", link)
	}
}

func TestMedication_ActiveAt(t *testing.T) {
	end := day(1)
	m := Medication{StartDate: day(0), EndDate: &end}

	if m.ActiveAt(day(-1)) {
		t.Fatalf("not active before start")
	}
	if !m.ActiveAt(day(0)) || !m.ActiveAt(day(1)) {
		t.Fatalf("active on both bounds")
	}
	if m.ActiveAt(day(2)) {
		t.Fatalf("not active after end")
	}
}

func TestService_Update_BlankNameRejected(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{PetID: 1, Name: "meloxicam", StartDate: day(0)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	blank := " \t "
	if _, err := svc.Update(ctx, m.ID, UpdateInput{Name: &blank}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if got := repo.byID[m.ID].Name; got != "meloxicam" {
		t.Fatalf("name must stay unchanged, got %q", got)
	}
}
