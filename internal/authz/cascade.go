package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/logger"
)

// TxManager corre fn dentro de una transacción. Si fn devuelve error (o
// hace panic) no queda visible ningún cambio.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DependentDeleter interface {
	DeleteByPet(ctx context.Context, petID int64) (int64, error)
}

type Dependent struct {
	Resource ResourceType
	Store    DependentDeleter
}

type PetDeleter interface {
	Delete(ctx context.Context, id int64) error
	IDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)
}

type UserDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// CascadeResult cuenta filas borradas por tipo de recurso.
type CascadeResult struct {
	Removed map[ResourceType]int64
}

func (r CascadeResult) Total() int64 {
	var n int64
	for _, v := range r.Removed {
		n += v
	}
	return n
}

type CoordinatorOptions struct {
	Tx TxManager
	// Dependents se borran en este orden, antes que el pet.
	Dependents []Dependent
	Pets       PetDeleter
	Users      UserDeleter
	Timeout    time.Duration
	Logger     logger.Logger
}

// Coordinator borra un pet o un usuario junto con todo lo que cuelga de él,
// en una única transacción. Sólo debe llamarse después de que Authorize
// haya permitido delete sobre la raíz.
type Coordinator struct {
	tx         TxManager
	dependents []Dependent
	pets       PetDeleter
	users      UserDeleter
	timeout    time.Duration
	log        logger.Logger
}

func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator{
		tx:         opts.Tx,
		dependents: opts.Dependents,
		pets:       opts.Pets,
		users:      opts.Users,
		timeout:    opts.Timeout,
		log:        log,
	}
}

func (c *Coordinator) DeletePetCascade(ctx context.Context, petID int64) (CascadeResult, error) {
	res := CascadeResult{Removed: map[ResourceType]int64{}}
	err := c.run(ctx, ResourcePet, petID, func(ctx context.Context) error {
		return c.deletePet(ctx, petID, res)
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return res, nil
}

func (c *Coordinator) DeleteUserCascade(ctx context.Context, userID int64) (CascadeResult, error) {
	res := CascadeResult{Removed: map[ResourceType]int64{}}
	err := c.run(ctx, ResourceUser, userID, func(ctx context.Context) error {
		petIDs, err := c.pets.IDsByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("list pets of user %d: %w", userID, err)
		}
		for _, petID := range petIDs {
			if err := c.deletePet(ctx, petID, res); err != nil {
				return err
			}
		}
		if err := c.users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete user %d: %w", userID, err)
		}
		res.Removed[ResourceUser]++
		return nil
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return res, nil
}

func (c *Coordinator) deletePet(ctx context.Context, petID int64, res CascadeResult) error {
	for _, d := range c.dependents {
		n, err := d.Store.DeleteByPet(ctx, petID)
		if err != nil {
			return fmt.Errorf("delete %ss of pet %d: %w", d.Resource, petID, err)
		}
		res.Removed[d.Resource] += n
	}
	if err := c.pets.Delete(ctx, petID); err != nil {
		return fmt.Errorf("delete pet %d: %w", petID, err)
	}
	res.Removed[ResourcePet]++
	return nil
}

func (c *Coordinator) run(ctx context.Context, root ResourceType, id int64, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := c.tx.RunInTx(ctx, fn)
	if err == nil {
		CascadeTotal.WithLabelValues(string(root), "committed").Inc()
		c.log.Info("cascade delete committed", map[string]any{"root": root, "root_id": id})
		return nil
	}

	CascadeTotal.WithLabelValues(string(root), "rolled_back").Inc()
	c.log.Error("cascade delete rolled back", map[string]any{"root": root, "root_id": id, "err": err})

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.New(apperr.KindNotFound, humanize(root)+" not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.Is(err, apperr.ErrStoreUnavailable):
		return apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", err)
	default:
		return apperr.Wrap(apperr.KindCascadeFailed, "delete could not be completed", err)
	}
}
