package memory

import (
	"context"
	"slices"
	"strings"

	"pet-clinic-api/internal/domain/medicalrecords"
)

type recordRepo struct{ s *Store }

func (s *Store) MedicalRecords() medicalrecords.Repository { return recordRepo{s: s} }

func (r recordRepo) Create(ctx context.Context, rec medicalrecords.Record) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(t *tables) error {
		if _, ok := t.pets.rows[rec.PetID]; !ok {
			return errPetMissing
		}
		id = t.records.next()
		rec.ID = id
		t.records.rows[id] = rec
		return nil
	})
	return id, err
}

func (r recordRepo) GetByID(ctx context.Context, id int64) (medicalrecords.Record, error) {
	var rec medicalrecords.Record
	err := r.s.read(ctx, func(t *tables) error {
		found, ok := t.records.rows[id]
		if !ok {
			return medicalrecords.ErrNotFound
		}
		rec = found
		return nil
	})
	return rec, err
}

func (r recordRepo) List(ctx context.Context, filter medicalrecords.ListFilter) ([]medicalrecords.Record, error) {
	q := strings.ToLower(filter.Query)

	var out []medicalrecords.Record
	err := r.s.read(ctx, func(t *tables) error {
		out = t.records.sorted(func(rec medicalrecords.Record) bool {
			return ptrMatches(filter.OwnerID, t.ownerOf(rec.PetID)) &&
				ptrMatches(filter.PetID, rec.PetID) &&
				inRange(rec.RecordDate, filter.From, filter.To) &&
				(q == "" || strings.Contains(strings.ToLower(rec.Description), q))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// más recientes primero
	slices.SortStableFunc(out, func(a, b medicalrecords.Record) int {
		return b.RecordDate.Compare(a.RecordDate)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r recordRepo) Update(ctx context.Context, rec medicalrecords.Record) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.records.rows[rec.ID]; !ok {
			return medicalrecords.ErrNotFound
		}
		if _, ok := t.pets.rows[rec.PetID]; !ok {
			return errPetMissing
		}
		t.records.rows[rec.ID] = rec
		return nil
	})
}

func (r recordRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.records.rows[id]; !ok {
			return medicalrecords.ErrNotFound
		}
		delete(t.records.rows, id)
		return nil
	})
}

func (r recordRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(t *tables) error {
		for id, rec := range t.records.rows {
			if rec.PetID == petID {
				delete(t.records.rows, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
