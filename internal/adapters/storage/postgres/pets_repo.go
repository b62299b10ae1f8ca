package postgres

import (
	"context"
	"database/sql"

	"pet-clinic-api/internal/domain/pets"
)

type PetsRepo struct{ s *Store }

func (s *Store) Pets() *PetsRepo { return &PetsRepo{s: s} }

const petColumns = `id, owner_id, name, species, breed, age, gender, medical_history, created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (int64, error) {
	var id int64
	err := r.s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO pets (
			owner_id,
			name, species, breed, age, gender,
			medical_history,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`,
		p.OwnerID,
		p.Name,
		p.Species,
		p.Breed,
		toNullInt(p.Age),
		string(p.Gender),
		p.MedicalHistory,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `
		UPDATE pets
		SET
			owner_id = $2,
			name = $3,
			species = $4,
			breed = $5,
			age = $6,
			gender = $7,
			medical_history = $8,
			updated_at = $9
		WHERE id = $1
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Species,
		p.Breed,
		toNullInt(p.Age),
		string(p.Gender),
		p.MedicalHistory,
		p.UpdatedAt,
	)
	if err != nil {
		return storeErr(err)
	}
	return mustAffect(res, pets.ErrNotFound)
}

func (r *PetsRepo) GetByID(ctx context.Context, id int64) (pets.Pet, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, notFound(err, pets.ErrNotFound)
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	var w where
	if filter.OwnerID != nil {
		w.and("owner_id = $%d", *filter.OwnerID)
	}
	if filter.Species != "" {
		w.and("lower(species) = lower($%d)", filter.Species)
	}
	if filter.Gender != "" {
		w.and("gender = $%d", string(filter.Gender))
	}
	if filter.MinAge != nil {
		w.and("age >= $%d", *filter.MinAge)
	}
	if filter.MaxAge != nil {
		w.and("age <= $%d", *filter.MaxAge)
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, `SELECT `+petColumns+` FROM pets WHERE TRUE`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, p)
	}
	return out, storeErr(rows.Err())
}

func (r *PetsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err)
	}
	return mustAffect(res, pets.ErrNotFound)
}

func (r *PetsRepo) IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	rows, err := r.s.conn(ctx).QueryContext(ctx, `SELECT id FROM pets WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr(err)
		}
		ids = append(ids, id)
	}
	return ids, storeErr(rows.Err())
}

func scanPet(sc scanner) (pets.Pet, error) {
	var (
		p      pets.Pet
		age    sql.NullInt64
		gender string
	)
	if err := sc.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&age,
		&gender,
		&p.MedicalHistory,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	p.Gender = pets.Gender(gender)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// age es nullable: nil = no informada.
func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
