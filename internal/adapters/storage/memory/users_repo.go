package memory

import (
	"context"
	"strings"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/domain/users"
)

type userRepo struct{ s *Store }

func (s *Store) Users() users.Repository { return userRepo{s: s} }

func (r userRepo) Create(ctx context.Context, u users.User) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(t *tables) error {
		if err := checkUnique(t, u); err != nil {
			return err
		}
		id = t.users.next()
		u.ID = id
		t.users.rows[id] = u
		return nil
	})
	return id, err
}

func (r userRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	var u users.User
	err := r.s.read(ctx, func(t *tables) error {
		found, ok := t.users.rows[id]
		if !ok {
			return users.ErrNotFound
		}
		u = found
		return nil
	})
	return u, err
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	var u users.User
	err := r.s.read(ctx, func(t *tables) error {
		for _, found := range t.users.rows {
			if strings.EqualFold(found.Username, username) {
				u = found
				return nil
			}
		}
		return users.ErrNotFound
	})
	return u, err
}

func (r userRepo) List(ctx context.Context, filter users.ListFilter) ([]users.User, error) {
	var out []users.User
	err := r.s.read(ctx, func(t *tables) error {
		out = t.users.sorted(func(u users.User) bool {
			return ptrMatches(filter.ID, u.ID) &&
				(filter.Role == "" || u.Role == filter.Role) &&
				inRange(u.CreatedAt, filter.From, filter.To)
		})
		return nil
	})
	return out, err
}

func (r userRepo) Update(ctx context.Context, u users.User) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.users.rows[u.ID]; !ok {
			return users.ErrNotFound
		}
		if err := checkUnique(t, u); err != nil {
			return err
		}
		t.users.rows[u.ID] = u
		return nil
	})
}

// Delete falla con Conflict si el usuario todavía tiene pets, igual que la
// foreign key en Postgres.
func (r userRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.users.rows[id]; !ok {
			return users.ErrNotFound
		}
		for _, p := range t.pets.rows {
			if p.OwnerID == id {
				return errUserHasPets
			}
		}
		delete(t.users.rows, id)
		return nil
	})
}

func checkUnique(t *tables, u users.User) error {
	for _, other := range t.users.rows {
		if other.ID == u.ID {
			continue
		}
		if strings.EqualFold(other.Username, u.Username) {
			return apperr.New(apperr.KindConflict, "username already taken")
		}
		if strings.EqualFold(other.Email, u.Email) {
			return apperr.New(apperr.KindConflict, "email already registered")
		}
	}
	return nil
}
