package pets

import (
	"context"

	"pet-clinic-api/internal/authz"
)

// OwnerLink expone el dueño directo de un pet para el resolver.
func (s *Service) OwnerLink(ctx context.Context, id int64) (authz.Link, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Link{}, err
	}
	return authz.OwnedBy(p.OwnerID), nil
}
