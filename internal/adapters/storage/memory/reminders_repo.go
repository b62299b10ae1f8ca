package memory

import (
	"context"
	"slices"
	"strings"

	"pet-clinic-api/internal/domain/reminders"
)

type reminderRepo struct{ s *Store }

func (s *Store) Reminders() reminders.Repository { return reminderRepo{s: s} }

func (r reminderRepo) Create(ctx context.Context, rem reminders.Reminder) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(t *tables) error {
		if _, ok := t.pets.rows[rem.PetID]; !ok {
			return errPetMissing
		}
		id = t.reminders.next()
		rem.ID = id
		t.reminders.rows[id] = rem
		return nil
	})
	return id, err
}

func (r reminderRepo) GetByID(ctx context.Context, id int64) (reminders.Reminder, error) {
	var rem reminders.Reminder
	err := r.s.read(ctx, func(t *tables) error {
		found, ok := t.reminders.rows[id]
		if !ok {
			return reminders.ErrNotFound
		}
		rem = found
		return nil
	})
	return rem, err
}

func (r reminderRepo) List(ctx context.Context, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	var out []reminders.Reminder
	err := r.s.read(ctx, func(t *tables) error {
		out = t.reminders.sorted(func(rem reminders.Reminder) bool {
			return ptrMatches(filter.OwnerID, t.ownerOf(rem.PetID)) &&
				ptrMatches(filter.PetID, rem.PetID) &&
				inRange(rem.Date, filter.From, filter.To) &&
				(filter.Type == "" || strings.EqualFold(rem.Type, filter.Type))
		})
		return nil
	})
	slices.SortStableFunc(out, func(a, b reminders.Reminder) int {
		return a.Date.Compare(b.Date)
	})
	return out, err
}

func (r reminderRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.reminders.rows[rem.ID]; !ok {
			return reminders.ErrNotFound
		}
		if _, ok := t.pets.rows[rem.PetID]; !ok {
			return errPetMissing
		}
		t.reminders.rows[rem.ID] = rem
		return nil
	})
}

func (r reminderRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.reminders.rows[id]; !ok {
			return reminders.ErrNotFound
		}
		delete(t.reminders.rows, id)
		return nil
	})
}

func (r reminderRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(t *tables) error {
		for id, rem := range t.reminders.rows {
			if rem.PetID == petID {
				delete(t.reminders.rows, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
