package memory

import (
	"context"
	"slices"
	"strings"

	"pet-clinic-api/internal/domain/medications"
)

type medicationRepo struct{ s *Store }

func (s *Store) Medications() medications.Repository { return medicationRepo{s: s} }

func (r medicationRepo) Create(ctx context.Context, m medications.Medication) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(t *tables) error {
		if _, ok := t.pets.rows[m.PetID]; !ok {
			return errPetMissing
		}
		id = t.medications.next()
		m.ID = id
		t.medications.rows[id] = m
		return nil
	})
	return id, err
}

func (r medicationRepo) GetByID(ctx context.Context, id int64) (medications.Medication, error) {
	var m medications.Medication
	err := r.s.read(ctx, func(t *tables) error {
		found, ok := t.medications.rows[id]
		if !ok {
			return medications.ErrNotFound
		}
		m = found
		return nil
	})
	return m, err
}

func (r medicationRepo) List(ctx context.Context, filter medications.ListFilter) ([]medications.Medication, error) {
	var out []medications.Medication
	err := r.s.read(ctx, func(t *tables) error {
		out = t.medications.sorted(func(m medications.Medication) bool {
			return ptrMatches(filter.OwnerID, t.ownerOf(m.PetID)) &&
				ptrMatches(filter.PetID, m.PetID) &&
				(filter.Name == "" || strings.EqualFold(m.Name, filter.Name))
		})
		return nil
	})
	slices.SortStableFunc(out, func(a, b medications.Medication) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return out, err
}

func (r medicationRepo) Update(ctx context.Context, m medications.Medication) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.medications.rows[m.ID]; !ok {
			return medications.ErrNotFound
		}
		if _, ok := t.pets.rows[m.PetID]; !ok {
			return errPetMissing
		}
		t.medications.rows[m.ID] = m
		return nil
	})
}

func (r medicationRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.medications.rows[id]; !ok {
			return medications.ErrNotFound
		}
		delete(t.medications.rows, id)
		return nil
	})
}

func (r medicationRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(t *tables) error {
		for id, m := range t.medications.rows {
			if m.PetID == petID {
				delete(t.medications.rows, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
