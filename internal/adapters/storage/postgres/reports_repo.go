package postgres

import (
	"context"

	"pet-clinic-api/internal/domain/reports"
)

type ReportsRepo struct{ s *Store }

func (s *Store) Reports() *ReportsRepo { return &ReportsRepo{s: s} }

func (r *ReportsRepo) Appointments(ctx context.Context, filter reports.AppointmentFilter) ([]reports.AppointmentRow, error) {
	var w where
	if filter.From != nil {
		w.and("a.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.and("a.date <= $%d", *filter.To)
	}
	if filter.Provider != "" {
		w.and("lower(a.provider) = lower($%d)", filter.Provider)
	}
	if filter.PetSpecies != "" {
		w.and("lower(p.species) = lower($%d)", filter.PetSpecies)
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, `
		SELECT a.id, a.date, a.provider, a.reason, p.id, p.name, p.species, p.owner_id
		FROM appointments a
		JOIN pets p ON p.id = a.pet_id
		WHERE TRUE`+w.String()+`
		ORDER BY a.date, a.id
	`, w.args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]reports.AppointmentRow, 0)
	for rows.Next() {
		var row reports.AppointmentRow
		if err := rows.Scan(
			&row.AppointmentID,
			&row.Date,
			&row.Provider,
			&row.Reason,
			&row.PetID,
			&row.PetName,
			&row.PetSpecies,
			&row.OwnerID,
		); err != nil {
			return nil, storeErr(err)
		}
		row.Date = row.Date.UTC()
		out = append(out, row)
	}
	return out, storeErr(rows.Err())
}
