package memory

import (
	"context"
	"slices"
	"strings"

	"pet-clinic-api/internal/domain/appointments"
)

type appointmentRepo struct{ s *Store }

func (s *Store) Appointments() appointments.Repository { return appointmentRepo{s: s} }

func (r appointmentRepo) Create(ctx context.Context, a appointments.Appointment) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(t *tables) error {
		if _, ok := t.pets.rows[a.PetID]; !ok {
			return errPetMissing
		}
		id = t.appointments.next()
		a.ID = id
		t.appointments.rows[id] = a
		return nil
	})
	return id, err
}

func (r appointmentRepo) GetByID(ctx context.Context, id int64) (appointments.Appointment, error) {
	var a appointments.Appointment
	err := r.s.read(ctx, func(t *tables) error {
		found, ok := t.appointments.rows[id]
		if !ok {
			return appointments.ErrNotFound
		}
		a = found
		return nil
	})
	return a, err
}

func (r appointmentRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	var out []appointments.Appointment
	err := r.s.read(ctx, func(t *tables) error {
		out = t.appointments.sorted(func(a appointments.Appointment) bool {
			return ptrMatches(filter.OwnerID, t.ownerOf(a.PetID)) &&
				ptrMatches(filter.PetID, a.PetID) &&
				inRange(a.Date, filter.From, filter.To) &&
				(filter.Provider == "" || strings.EqualFold(a.Provider, filter.Provider))
		})
		return nil
	})
	slices.SortStableFunc(out, func(a, b appointments.Appointment) int {
		return a.Date.Compare(b.Date)
	})
	return out, err
}

func (r appointmentRepo) Update(ctx context.Context, a appointments.Appointment) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.appointments.rows[a.ID]; !ok {
			return appointments.ErrNotFound
		}
		if _, ok := t.pets.rows[a.PetID]; !ok {
			return errPetMissing
		}
		t.appointments.rows[a.ID] = a
		return nil
	})
}

func (r appointmentRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.appointments.rows[id]; !ok {
			return appointments.ErrNotFound
		}
		delete(t.appointments.rows, id)
		return nil
	})
}

func (r appointmentRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(t *tables) error {
		for id, a := range t.appointments.rows {
			if a.PetID == petID {
				delete(t.appointments.rows, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
