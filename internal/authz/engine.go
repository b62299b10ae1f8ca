package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/ports/auth"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed policy/model.conf
var embeddedModel string

//go:embed policy/policy.csv
var embeddedPolicy string

const (
	ownedByPrincipal = "owner"
	ownedByOther     = "other"
	ownedByNobody    = "none"
)

// Decision es el resultado de Engine.Decide. Reason es apto para el cliente.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err devuelve nil si se permite, o un Forbidden con Reason.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.New(apperr.KindForbidden, d.Reason)
}

// Engine evalúa la matriz rol/recurso/acción/propiedad. No hace I/O y no
// guarda estado entre llamadas: la política se carga una sola vez.
type Engine struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEngine() (*Engine, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Engine{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] != "p" || len(parts) != 5 {
			return fmt.Errorf("authz: invalid policy line %q", line)
		}

		if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3], parts[4]); err != nil {
			return fmt.Errorf("authz: add policy %q: %w", line, err)
		}
	}
	return nil
}

// Decide responde si p puede ejecutar action sobre un recurso de tipo res
// cuyo dueño resuelto es ownerID. ownerID nil significa que no hay un
// recurso puntual (listados, altas de pet, reportes).
func (e *Engine) Decide(p auth.Principal, action Action, res ResourceType, ownerID *int64) Decision {
	d := e.decide(p, action, res, ownerID)
	recordDecision(p.Role, res, action, d.Allowed)
	return d
}

func (e *Engine) decide(p auth.Principal, action Action, res ResourceType, ownerID *int64) Decision {
	if !p.Role.Valid() {
		return Decision{Reason: "unknown role"}
	}

	allowed, err := e.enforcer.Enforce(string(p.Role), string(res), string(action), ownership(p, ownerID))
	if err != nil || !allowed {
		return Decision{Reason: denyReason(action, res)}
	}
	return Decision{Allowed: true}
}

func ownership(p auth.Principal, ownerID *int64) string {
	switch {
	case ownerID == nil:
		return ownedByNobody
	case *ownerID == p.ID:
		return ownedByPrincipal
	default:
		return ownedByOther
	}
}

func denyReason(action Action, res ResourceType) string {
	switch action {
	case ActionAssignRole:
		return "you do not have permission to change roles"
	case ActionList:
		return fmt.Sprintf("you do not have permission to list %s", plural(res))
	default:
		return fmt.Sprintf("you do not have permission to %s this %s", action, humanize(res))
	}
}

func humanize(res ResourceType) string {
	return strings.ReplaceAll(string(res), "_", " ")
}

func plural(res ResourceType) string {
	return humanize(res) + "s"
}
