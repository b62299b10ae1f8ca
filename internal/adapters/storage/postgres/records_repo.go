package postgres

import (
	"context"
	"strings"

	"pet-clinic-api/internal/domain/medicalrecords"
)

type MedicalRecordsRepo struct{ s *Store }

func (s *Store) MedicalRecords() *MedicalRecordsRepo { return &MedicalRecordsRepo{s: s} }

const recordColumns = `m.id, m.pet_id, m.record_date, m.description, m.created_at`

func (r *MedicalRecordsRepo) Create(ctx context.Context, rec medicalrecords.Record) (int64, error) {
	var id int64
	err := r.s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO medical_records (pet_id, record_date, description, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, rec.PetID, rec.RecordDate, rec.Description, rec.CreatedAt).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (r *MedicalRecordsRepo) GetByID(ctx context.Context, id int64) (medicalrecords.Record, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+recordColumns+` FROM medical_records m WHERE m.id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return medicalrecords.Record{}, notFound(err, medicalrecords.ErrNotFound)
	}
	return rec, nil
}

func (r *MedicalRecordsRepo) List(ctx context.Context, filter medicalrecords.ListFilter) ([]medicalrecords.Record, error) {
	var w where
	if filter.OwnerID != nil {
		w.and("p.owner_id = $%d", *filter.OwnerID)
	}
	if filter.PetID != nil {
		w.and("m.pet_id = $%d", *filter.PetID)
	}
	if filter.From != nil {
		w.and("m.record_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.and("m.record_date <= $%d", *filter.To)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		w.and("m.description ILIKE $%d", "%"+q+"%")
	}

	query := `
		SELECT ` + recordColumns + `
		FROM medical_records m
		JOIN pets p ON p.id = m.pet_id
		WHERE TRUE` + w.String() + `
		ORDER BY m.record_date DESC, m.id DESC`
	args := w.args
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]medicalrecords.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, rec)
	}
	return out, storeErr(rows.Err())
}

func (r *MedicalRecordsRepo) Update(ctx context.Context, rec medicalrecords.Record) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `
		UPDATE medical_records
		SET pet_id = $2, record_date = $3, description = $4
		WHERE id = $1
	`, rec.ID, rec.PetID, rec.RecordDate, rec.Description)
	if err != nil {
		return storeErr(err)
	}
	return mustAffect(res, medicalrecords.ErrNotFound)
}

func (r *MedicalRecordsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err)
	}
	return mustAffect(res, medicalrecords.ErrNotFound)
}

func (r *MedicalRecordsRepo) DeleteByPet(ctx context.Context, petID int64) (int64, error) {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM medical_records WHERE pet_id = $1`, petID)
	if err != nil {
		return 0, deleteErr(err)
	}
	n, err := res.RowsAffected()
	return n, storeErr(err)
}

func scanRecord(sc scanner) (medicalrecords.Record, error) {
	var rec medicalrecords.Record
	if err := sc.Scan(&rec.ID, &rec.PetID, &rec.RecordDate, &rec.Description, &rec.CreatedAt); err != nil {
		return medicalrecords.Record{}, err
	}
	rec.RecordDate = rec.RecordDate.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
