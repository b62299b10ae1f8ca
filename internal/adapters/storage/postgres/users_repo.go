package postgres

import (
	"context"

	"pet-clinic-api/internal/domain/users"
	"pet-clinic-api/internal/ports/auth"
)

type UsersRepo struct{ s *Store }

func (s *Store) Users() *UsersRepo { return &UsersRepo{s: s} }

const userColumns = `id, username, email, password_hash, role, created_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) (int64, error) {
	var id int64
	err := r.s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	row := r.s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
	u, err := scanUser(row)
	if err != nil {
		return users.User{}, notFound(err, users.ErrNotFound)
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, filter users.ListFilter) ([]users.User, error) {
	var w where
	if filter.ID != nil {
		w.and("id = $%d", *filter.ID)
	}
	if filter.Role != "" {
		w.and("role = $%d", string(filter.Role))
	}
	if filter.From != nil {
		w.and("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.and("created_at <= $%d", *filter.To)
	}

	rows, err := r.s.conn(ctx).QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE TRUE`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, u)
	}
	return out, storeErr(rows.Err())
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, role = $5
		WHERE id = $1
	`, u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role))
	if err != nil {
		return storeErr(err)
	}
	return mustAffect(res, users.ErrNotFound)
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.s.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err)
	}
	return mustAffect(res, users.ErrNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (users.User, error) {
	var (
		u    users.User
		role string
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return users.User{}, err
	}
	u.Role = auth.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
