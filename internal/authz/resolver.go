package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/logger"
)

// ErrDanglingReference marca un recurso que apunta a un padre inexistente.
// El error devuelto al handler sigue siendo NotFound.
var ErrDanglingReference = errors.New("authz: dangling parent reference")

const maxChainDepth = 8

// Link describe cómo se llega al dueño desde un recurso: o lo trae directo
// (OwnerID) o delega en un recurso padre.
type Link struct {
	OwnerID  *int64
	Parent   ResourceType
	ParentID int64
}

func OwnedBy(userID int64) Link {
	return Link{OwnerID: &userID}
}

func ChildOf(parent ResourceType, parentID int64) Link {
	return Link{Parent: parent, ParentID: parentID}
}

// Lookup busca un recurso por id. Si no existe debe devolver un error que
// cumpla errors.Is(err, apperr.ErrNotFound).
type Lookup func(ctx context.Context, id int64) (Link, error)

type Resolver struct {
	lookups map[ResourceType]Lookup
	timeout time.Duration
	log     logger.Logger
}

// NewResolver crea un resolver vacío. Cada llamada al store corre con su
// propio deadline de timeout.
func NewResolver(timeout time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		lookups: map[ResourceType]Lookup{},
		timeout: timeout,
		log:     log,
	}
}

// Register no es seguro para uso concurrente; se llama al armar el router.
func (r *Resolver) Register(res ResourceType, lookup Lookup) {
	r.lookups[res] = lookup
}

// ResolveOwner sigue la cadena de padres hasta encontrar un dueño directo.
func (r *Resolver) ResolveOwner(ctx context.Context, res ResourceType, id int64) (int64, error) {
	cur, curID := res, id

	for depth := 0; depth < maxChainDepth; depth++ {
		lookup, ok := r.lookups[cur]
		if !ok {
			return 0, fmt.Errorf("authz: no owner lookup registered for %q", cur)
		}

		link, err := r.call(ctx, lookup, curID)
		if err != nil {
			return 0, r.lookupError(res, id, cur, curID, depth, err)
		}

		if link.OwnerID != nil {
			return *link.OwnerID, nil
		}
		if link.Parent == "" {
			return 0, fmt.Errorf("authz: %s %d has neither owner nor parent", cur, curID)
		}
		cur, curID = link.Parent, link.ParentID
	}

	return 0, fmt.Errorf("authz: ownership chain of %s %d exceeds depth %d", res, id, maxChainDepth)
}

func (r *Resolver) call(ctx context.Context, lookup Lookup, id int64) (Link, error) {
	if r.timeout <= 0 {
		return lookup(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return lookup(ctx, id)
}

func (r *Resolver) lookupError(root ResourceType, rootID int64, cur ResourceType, curID int64, depth int, err error) error {
	if !errors.Is(err, apperr.ErrNotFound) {
		if apperr.KindOf(err) == apperr.KindStoreUnavailable {
			return err
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", err)
	}

	if depth == 0 {
		return apperr.New(apperr.KindNotFound, humanize(root)+" not found")
	}

	// El recurso existe pero su padre no: cascada incompleta en algún lado.
	DanglingReferencesTotal.WithLabelValues(string(root)).Inc()
	r.log.Warn("dangling parent reference", map[string]any{
		"resource":    root,
		"resource_id": rootID,
		"parent":      cur,
		"parent_id":   curID,
	})
	return apperr.Wrap(apperr.KindNotFound, humanize(root)+" not found", ErrDanglingReference)
}
