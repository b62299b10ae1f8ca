package users

import (
	"context"

	"pet-clinic-api/internal/authz"
)

// OwnerLink: una cuenta es propiedad de sí misma.
func (s *Service) OwnerLink(ctx context.Context, id int64) (authz.Link, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Link{}, err
	}
	return authz.OwnedBy(u.ID), nil
}
