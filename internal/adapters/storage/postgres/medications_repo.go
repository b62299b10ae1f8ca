package postgres

import (
	"context"
	"database/sql"

	"pet-clinic-api/internal/domain/medications"
)

type MedicationsRepo struct{ s *Store }

func (s *Store) Medications() *MedicationsRepo { return &MedicationsRepo{s: s} }

const medicationColumns = `md.id, md.pet_id, md.name, md.dosage, md.dose_unit, md.frequency, md.start_date, md.end_date, md.notes, md.created_at`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) (int64, error) {
	var id int64
	err := r.s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO medications (
			pet_id, name, dosage, dose_unit, frequency,
			start_date, end_date, notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`,
		m.PetID,
		m.Name,
		m.Dosage,
		m.DoseUnit,
		m.Frequency,
		m.StartDate,
		nullTime(m.EndDate),
		m.Notes,
		m.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id int64) (medications.Medication, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+medicationColumns+` FROM medications md WHERE md.id = $1`, id)
	m, err := scanMedication(row)
	if err != nil {
		return medications.Medication{}, notFound(err, medications.ErrNotFound)
	}
	return m, nil
}

func (r *MedicationsRepo) List(ctx context.Context, filter medications.ListFilter) ([]medications.Medication, error) {
	var w where
	if filter.OwnerID != nil {
		w.and("p.owner_id = $%d", *filter.OwnerID)
	}
	if filter.PetID != nil {
		w.and("md.pet_id = $%d", *filter.PetID)
	}
	if filter.Name != "" {
		w.and("lower(md.name) = lower($%d)", filter.Name)
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications md
		JOIN pets p ON p.id = md.pet_id
		WHERE TRUE`+w.String()+`
		ORDER BY md.start_date DESC, md.id
	`, w.args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, m)
	}
	return out, storeErr(rows.Err())
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `
		UPDATE medications
		SET
			pet_id = $2,
			name = $3,
			dosage = $4,
			dose_unit = $5,
			frequency = $6,
			start_date = $7,
			end_date = $8,
			notes = $9
		WHERE id = $1
	`,
		m.ID,
		m.PetID,
		m.Name,
		m.Dosage,
		m.DoseUnit,
		m.Frequency,
		m.StartDate,
		nullTime(m.EndDate),
		m.Notes,
	)
	if err != nil {
		return storeErr(err)
	}
	return mustAffect(res, medications.ErrNotFound)
}

func (r *MedicationsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err)
	}
	return mustAffect(res, medications.ErrNotFound)
}

func (r *MedicationsRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM medications WHERE pet_id = $1`, petID)
	if err != nil {
		return 0, deleteErr(err)
	}
	n, err := res.RowsAffected()
	return n, storeErr(err)
}

func scanMedication(sc scanner) (medications.Medication, error) {
	var (
		m   medications.Medication
		end sql.NullTime
	)
	if err := sc.Scan(
		&m.ID,
		&m.PetID,
		&m.Name,
		&m.Dosage,
		&m.DoseUnit,
		&m.Frequency,
		&m.StartDate,
		&end,
		&m.Notes,
		&m.CreatedAt,
	); err != nil {
		return medications.Medication{}, err
	}
	m.StartDate = m.StartDate.UTC()
	m.EndDate = timePtr(end)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}
