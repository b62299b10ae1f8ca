package postgres

import (
	"context"

	"pet-clinic-api/internal/domain/reminders"
)

type RemindersRepo struct{ s *Store }

func (s *Store) Reminders() *RemindersRepo { return &RemindersRepo{s: s} }

const reminderColumns = `rm.id, rm.pet_id, rm.type, rm.date, rm.notes, rm.created_at, rm.updated_at`

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) (int64, error) {
	var id int64
	err := r.s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO reminders (pet_id, type, date, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, rem.PetID, rem.Type, rem.Date, rem.Notes, rem.CreatedAt, rem.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (r *RemindersRepo) GetByID(ctx context.Context, id int64) (reminders.Reminder, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders rm WHERE rm.id = $1`, id)
	rem, err := scanReminder(row)
	if err != nil {
		return reminders.Reminder{}, notFound(err, reminders.ErrNotFound)
	}
	return rem, nil
}

func (r *RemindersRepo) List(ctx context.Context, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	var w where
	if filter.OwnerID != nil {
		w.and("p.owner_id = $%d", *filter.OwnerID)
	}
	if filter.PetID != nil {
		w.and("rm.pet_id = $%d", *filter.PetID)
	}
	if filter.Type != "" {
		w.and("lower(rm.type) = lower($%d)", filter.Type)
	}
	if filter.From != nil {
		w.and("rm.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.and("rm.date <= $%d", *filter.To)
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders rm
		JOIN pets p ON p.id = rm.pet_id
		WHERE TRUE`+w.String()+`
		ORDER BY rm.date, rm.id
	`, w.args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, rem)
	}
	return out, storeErr(rows.Err())
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `
		UPDATE reminders
		SET pet_id = $2, type = $3, date = $4, notes = $5, updated_at = $6
		WHERE id = $1
	`, rem.ID, rem.PetID, rem.Type, rem.Date, rem.Notes, rem.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	return mustAffect(res, reminders.ErrNotFound)
}

func (r *RemindersRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err)
	}
	return mustAffect(res, reminders.ErrNotFound)
}

func (r *RemindersRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM reminders WHERE pet_id = $1`, petID)
	if err != nil {
		return 0, deleteErr(err)
	}
	n, err := res.RowsAffected()
	return n, storeErr(err)
}

func scanReminder(sc scanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	if err := sc.Scan(&rem.ID, &rem.PetID, &rem.Type, &rem.Date, &rem.Notes, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
		return reminders.Reminder{}, err
	}
	rem.Date = rem.Date.UTC()
	rem.CreatedAt = rem.CreatedAt.UTC()
	rem.UpdatedAt = rem.UpdatedAt.UTC()
	return rem, nil
}
