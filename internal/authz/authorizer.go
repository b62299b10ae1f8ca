package authz

import (
	"context"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/ports/auth"
)

var errPetIDRequired = apperr.New(apperr.KindInvalidInput, "pet_id is required")

// Authorizer es lo que usan los handlers: resolveOwner + decide en una
// sola llamada.
type Authorizer struct {
	engine   *Engine
	resolver *Resolver
}

func NewAuthorizer(engine *Engine, resolver *Resolver) *Authorizer {
	return &Authorizer{engine: engine, resolver: resolver}
}

// Authorize chequea una operación sobre un recurso existente. Devuelve
// NotFound si no existe (antes de decidir) y Forbidden si se deniega.
func (a *Authorizer) Authorize(ctx context.Context, p auth.Principal, action Action, res ResourceType, id int64) error {
	owner, err := a.resolver.ResolveOwner(ctx, res, id)
	if err != nil {
		return err
	}
	return a.engine.Decide(p, action, res, &owner).Err()
}

// AuthorizeCreate chequea un alta. Para dependientes de pet, petID es el
// pet referenciado y tiene que existir; para el resto se ignora. Un petID
// no positivo es InvalidInput, sin tocar el store.
func (a *Authorizer) AuthorizeCreate(ctx context.Context, p auth.Principal, res ResourceType, petID int64) error {
	if !res.IsPetDependent() {
		return a.engine.Decide(p, ActionCreate, res, nil).Err()
	}
	if petID <= 0 {
		return errPetIDRequired
	}
	owner, err := a.resolver.ResolveOwner(ctx, ResourcePet, petID)
	if err != nil {
		return err
	}
	return a.engine.Decide(p, ActionCreate, res, &owner).Err()
}

// Allow chequea acciones que no apuntan a un recurso puntual (reportes,
// cambio de rol).
func (a *Authorizer) Allow(p auth.Principal, action Action, res ResourceType) error {
	return a.engine.Decide(p, action, res, nil).Err()
}

// Scope es el filtro que un listado tiene que aplicar del lado del server.
type Scope struct {
	All     bool
	OwnerID int64
}

// Owner devuelve nil si no hay que filtrar.
func (s Scope) Owner() *int64 {
	if s.All {
		return nil
	}
	id := s.OwnerID
	return &id
}

// ListScope decide un listado y devuelve el filtro obligatorio: todo para
// admin, sólo lo propio para el resto.
func (a *Authorizer) ListScope(p auth.Principal, res ResourceType) (Scope, error) {
	if err := a.engine.Decide(p, ActionList, res, nil).Err(); err != nil {
		return Scope{}, err
	}
	if p.IsAdmin() {
		return Scope{All: true}, nil
	}
	return Scope{OwnerID: p.ID}, nil
}
