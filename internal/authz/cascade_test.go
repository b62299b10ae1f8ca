package authz

import (
	"context"
	"errors"
	"maps"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/logger"
)

// fakeStore imita una base con transacciones: RunInTx guarda una copia y
// la restaura si fn falla.
type fakeStore struct {
	pets  map[int64]int64 // petID -> ownerID
	deps  map[ResourceType]map[int64]int64
	users map[int64]bool

	failPetDelete error
	failDependent ResourceType
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		pets:  map[int64]int64{10: 1, 11: 1, 20: 2},
		deps:  map[ResourceType]map[int64]int64{},
		users: map[int64]bool{1: true, 2: true},
	}
	id := int64(1000)
	for _, res := range PetDependents {
		s.deps[res] = map[int64]int64{}
		for _, petID := range []int64{10, 10, 11, 20} {
			id++
			s.deps[res][id] = petID
		}
	}
	return s
}

func (s *fakeStore) rows() int {
	n := len(s.pets) + len(s.users)
	for _, d := range s.deps {
		n += len(d)
	}
	return n
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	pets := maps.Clone(s.pets)
	users := maps.Clone(s.users)
	deps := map[ResourceType]map[int64]int64{}
	for k, v := range s.deps {
		deps[k] = maps.Clone(v)
	}

	if err := fn(ctx); err != nil {
		s.pets, s.users, s.deps = pets, users, deps
		return err
	}
	return nil
}

type fakeDependent struct {
	s   *fakeStore
	res ResourceType
}

func (d fakeDependent) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d.s.failDependent == d.res {
		return 0, errors.New("disk full")
	}
	var n int64
	for id, p := range d.s.deps[d.res] {
		if p == petID {
			delete(d.s.deps[d.res], id)
			n++
		}
	}
	return n, nil
}

type fakePets struct{ s *fakeStore }

func (p fakePets) Delete(ctx context.Context, id int64) error {
	if p.s.failPetDelete != nil {
		return p.s.failPetDelete
	}
	if _, ok := p.s.pets[id]; !ok {
		return apperr.New(apperr.KindNotFound, "pet not found")
	}
	delete(p.s.pets, id)
	return nil
}

func (p fakePets) IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	out := []int64{}
	for id, o := range p.s.pets {
		if o == ownerID {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeUsers struct{ s *fakeStore }

func (u fakeUsers) Delete(ctx context.Context, id int64) error {
	if !u.s.users[id] {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	delete(u.s.users, id)
	return nil
}

func newTestCoordinator(s *fakeStore) *Coordinator {
	deps := make([]Dependent, 0, len(PetDependents))
	for _, res := range PetDependents {
		deps = append(deps, Dependent{Resource: res, Store: fakeDependent{s: s, res: res}})
	}
	return NewCoordinator(CoordinatorOptions{
		Tx:         s,
		Dependents: deps,
		Pets:       fakePets{s: s},
		Users:      fakeUsers{s: s},
		Timeout:    time.Second,
		Logger:     logger.Nop(),
	})
}

func TestDeletePetCascade_RemovesEverything(t *testing.T) {
	s := newFakeStore()
	c := newTestCoordinator(s)
	before := s.rows()

	res, err := c.DeletePetCascade(context.Background(), 10)
	if err != nil {
		t.Fatalf("DeletePetCascade: %v", err)
	}

	// 2 de cada uno de los 4 dependientes + el pet.
	if res.Total() != 9 {
		t.Fatalf("expected 9 rows removed, got %d (%v)", res.Total(), res.Removed)
	}
	if before-s.rows() != 9 {
		t.Fatalf("store lost %d rows, expected 9", before-s.rows())
	}
	if _, ok := s.pets[10]; ok {
		t.Fatalf("pet 10 still exists")
	}
	for res, rows := range s.deps {
		for id, petID := range rows {
			if petID == 10 {
				t.Fatalf("%s %d still references pet 10", res, id)
			}
		}
	}
}

func TestDeletePetCascade_FailureBeforeRootRollsBack(t *testing.T) {
	s := newFakeStore()
	s.failPetDelete = errors.New("connection reset")
	c := newTestCoordinator(s)
	before := s.rows()

	_, err := c.DeletePetCascade(context.Background(), 10)
	if !errors.Is(err, apperr.ErrCascadeFailed) {
		t.Fatalf("expected CascadeFailed, got %v", err)
	}
	if s.rows() != before {
		t.Fatalf("partial cascade visible: %d rows before, %d after", before, s.rows())
	}
	if _, ok := s.pets[10]; !ok {
		t.Fatalf("pet 10 must still exist after rollback")
	}
}

func TestDeletePetCascade_FailureMidDependentsRollsBack(t *testing.T) {
	s := newFakeStore()
	s.failDependent = ResourceReminder
	c := newTestCoordinator(s)
	before := s.rows()

	if _, err := c.DeletePetCascade(context.Background(), 10); !errors.Is(err, apperr.ErrCascadeFailed) {
		t.Fatalf("expected CascadeFailed, got %v", err)
	}
	if s.rows() != before {
		t.Fatalf("expected 0 rows removed, got %d", before-s.rows())
	}
}

func TestDeletePetCascade_Missing(t *testing.T) {
	s := newFakeStore()
	c := newTestCoordinator(s)

	if _, err := c.DeletePetCascade(context.Background(), 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeletePetCascade_DeadlineIsUnavailable(t *testing.T) {
	s := newFakeStore()
	c := newTestCoordinator(s)
	before := s.rows()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.DeletePetCascade(ctx, 10); !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
	if s.rows() != before {
		t.Fatalf("nothing must be removed on deadline")
	}
}

func TestDeleteUserCascade(t *testing.T) {
	s := newFakeStore()
	c := newTestCoordinator(s)
	before := s.rows()

	res, err := c.DeleteUserCascade(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeleteUserCascade: %v", err)
	}

	// pets 10 y 11, 3 dependientes de cada tipo entre ambos, y el usuario.
	want := int64(2 + 3*len(PetDependents) + 1)
	if res.Total() != want || int64(before-s.rows()) != want {
		t.Fatalf("expected %d rows removed, got result %d store %d", want, res.Total(), before-s.rows())
	}
	if s.users[1] {
		t.Fatalf("user 1 still exists")
	}
	if _, ok := s.pets[20]; !ok {
		t.Fatalf("pet 20 belongs to user 2 and must survive")
	}
}

func TestDeleteUserCascade_RollsBackWholeTree(t *testing.T) {
	s := newFakeStore()
	c := newTestCoordinator(s)
	before := s.rows()

	c.users = failingUsers{}
	if _, err := c.DeleteUserCascade(context.Background(), 1); !errors.Is(err, apperr.ErrCascadeFailed) {
		t.Fatalf("expected CascadeFailed, got %v", err)
	}
	if s.rows() != before {
		t.Fatalf("pets of user 1 were removed even though the user delete failed")
	}
}

type failingUsers struct{}

func (failingUsers) Delete(ctx context.Context, id int64) error {
	return errors.New("constraint violation")
}
