package postgres

import (
	"context"

	"pet-clinic-api/internal/domain/appointments"
)

type AppointmentsRepo struct{ s *Store }

func (s *Store) Appointments() *AppointmentsRepo { return &AppointmentsRepo{s: s} }

const appointmentColumns = `a.id, a.pet_id, a.date, a.provider, a.reason, a.created_at, a.updated_at`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) (int64, error) {
	var id int64
	err := r.s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO appointments (pet_id, date, provider, reason, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, a.PetID, a.Date, a.Provider, a.Reason, a.CreatedAt, a.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id int64) (appointments.Appointment, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments a WHERE a.id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return appointments.Appointment{}, notFound(err, appointments.ErrNotFound)
	}
	return a, nil
}

func (r *AppointmentsRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	var w where
	if filter.OwnerID != nil {
		w.and("p.owner_id = $%d", *filter.OwnerID)
	}
	if filter.PetID != nil {
		w.and("a.pet_id = $%d", *filter.PetID)
	}
	if filter.From != nil {
		w.and("a.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.and("a.date <= $%d", *filter.To)
	}
	if filter.Provider != "" {
		w.and("lower(a.provider) = lower($%d)", filter.Provider)
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		JOIN pets p ON p.id = a.pet_id
		WHERE TRUE`+w.String()+`
		ORDER BY a.date, a.id
	`, w.args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, a)
	}
	return out, storeErr(rows.Err())
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `
		UPDATE appointments
		SET pet_id = $2, date = $3, provider = $4, reason = $5, updated_at = $6
		WHERE id = $1
	`, a.ID, a.PetID, a.Date, a.Provider, a.Reason, a.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	return mustAffect(res, appointments.ErrNotFound)
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err)
	}
	return mustAffect(res, appointments.ErrNotFound)
}

func (r *AppointmentsRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE pet_id = $1`, petID)
	if err != nil {
		return 0, deleteErr(err)
	}
	n, err := res.RowsAffected()
	return n, storeErr(err)
}

func scanAppointment(sc scanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	if err := sc.Scan(&a.ID, &a.PetID, &a.Date, &a.Provider, &a.Reason, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return appointments.Appointment{}, err
	}
	a.Date = a.Date.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
