package memory

import (
	"context"
	"strings"

	"pet-clinic-api/internal/domain/pets"
)

type petRepo struct{ s *Store }

func (s *Store) Pets() pets.Repository { return petRepo{s: s} }

func (r petRepo) Create(ctx context.Context, p pets.Pet) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(t *tables) error {
		if _, ok := t.users.rows[p.OwnerID]; !ok {
			return errOwnerMissing
		}
		id = t.pets.next()
		p.ID = id
		t.pets.rows[id] = p
		return nil
	})
	return id, err
}

func (r petRepo) GetByID(ctx context.Context, id int64) (pets.Pet, error) {
	var p pets.Pet
	err := r.s.read(ctx, func(t *tables) error {
		found, ok := t.pets.rows[id]
		if !ok {
			return pets.ErrNotFound
		}
		p = found
		return nil
	})
	return p, err
}

func (r petRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	var out []pets.Pet
	err := r.s.read(ctx, func(t *tables) error {
		out = t.pets.sorted(func(p pets.Pet) bool {
			return ptrMatches(filter.OwnerID, p.OwnerID) &&
				(filter.Species == "" || strings.EqualFold(p.Species, filter.Species)) &&
				(filter.Gender == "" || p.Gender == filter.Gender) &&
				ageMatches(p.Age, filter.MinAge, filter.MaxAge)
		})
		return nil
	})
	return out, err
}

func (r petRepo) Update(ctx context.Context, p pets.Pet) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.pets.rows[p.ID]; !ok {
			return pets.ErrNotFound
		}
		if _, ok := t.users.rows[p.OwnerID]; !ok {
			return errOwnerMissing
		}
		t.pets.rows[p.ID] = p
		return nil
	})
}

func (r petRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.pets.rows[id]; !ok {
			return pets.ErrNotFound
		}
		if t.petDependents(id) > 0 {
			return errPetHasRows
		}
		delete(t.pets.rows, id)
		return nil
	})
}

func (r petRepo) IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := r.s.read(ctx, func(t *tables) error {
		for _, p := range t.pets.sorted(func(p pets.Pet) bool { return p.OwnerID == ownerID }) {
			ids = append(ids, p.ID)
		}
		return nil
	})
	return ids, err
}

// ageMatches: con filtro de edad, los pets sin edad cargada quedan afuera.
func ageMatches(age, lo, hi *int) bool {
	if lo == nil && hi == nil {
		return true
	}
	if age == nil {
		return false
	}
	if lo != nil && *age < *lo {
		return false
	}
	return hi == nil || *age <= *hi
}
