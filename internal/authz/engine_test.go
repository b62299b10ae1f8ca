package authz

import (
	"errors"
	"testing"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/ports/auth"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	allResources = []ResourceType{
		ResourcePet, ResourceAppointment, ResourceMedicalRecord,
		ResourceReminder, ResourceMedication, ResourceUser, ResourceReport,
	}
	allActions = []Action{
		ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionAssignRole,
	}
	ownedResources = []ResourceType{
		ResourcePet, ResourceAppointment, ResourceMedicalRecord, ResourceReminder, ResourceMedication,
	}
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func owner(id int64) *int64 { return &id }

func TestDecide_AdminBypass(t *testing.T) {
	e := newTestEngine(t)
	admin := auth.Principal{ID: 3, Role: auth.RoleAdmin}

	owners := []*int64{nil, owner(3), owner(1), owner(999)}
	for _, res := range allResources {
		for _, act := range allActions {
			for _, o := range owners {
				if d := e.Decide(admin, act, res, o); !d.Allowed {
					t.Fatalf("admin denied %s on %s (owner %v): %s", act, res, o, d.Reason)
				}
			}
		}
	}
}

func TestDecide_OwnershipEnforced(t *testing.T) {
	e := newTestEngine(t)
	userB := auth.Principal{ID: 2, Role: auth.RoleUser}

	for _, res := range append(ownedResources, ResourceUser) {
		for _, act := range []Action{ActionRead, ActionUpdate, ActionDelete} {
			d := e.Decide(userB, act, res, owner(1))
			if d.Allowed {
				t.Fatalf("user 2 allowed %s on %s owned by 1", act, res)
			}
			if !errors.Is(d.Err(), apperr.ErrForbidden) {
				t.Fatalf("expected Forbidden, got %v", d.Err())
			}
			if d.Reason == "" {
				t.Fatalf("deny must carry a reason")
			}
		}
	}
}

func TestDecide_OwnerAllowed(t *testing.T) {
	e := newTestEngine(t)
	userA := auth.Principal{ID: 1, Role: auth.RoleUser}

	for _, res := range ownedResources {
		for _, act := range []Action{ActionRead, ActionUpdate, ActionDelete} {
			if d := e.Decide(userA, act, res, owner(1)); !d.Allowed {
				t.Fatalf("owner denied %s on own %s: %s", act, res, d.Reason)
			}
		}
	}
}

func TestDecide_UserCollectionsAndCreate(t *testing.T) {
	e := newTestEngine(t)
	userA := auth.Principal{ID: 1, Role: auth.RoleUser}

	for _, res := range append(ownedResources, ResourceUser) {
		if d := e.Decide(userA, ActionList, res, nil); !d.Allowed {
			t.Fatalf("user denied list of %s", res)
		}
	}

	if d := e.Decide(userA, ActionCreate, ResourcePet, nil); !d.Allowed {
		t.Fatalf("user must be able to create pets")
	}

	for _, res := range PetDependents {
		if d := e.Decide(userA, ActionCreate, res, owner(1)); !d.Allowed {
			t.Fatalf("user denied create %s on own pet", res)
		}
		if d := e.Decide(userA, ActionCreate, res, owner(2)); d.Allowed {
			t.Fatalf("user allowed create %s on another user's pet", res)
		}
		if d := e.Decide(userA, ActionCreate, res, nil); d.Allowed {
			t.Fatalf("create %s without a resolved pet owner must be denied", res)
		}
	}
}

func TestDecide_UserAccount(t *testing.T) {
	e := newTestEngine(t)
	userA := auth.Principal{ID: 1, Role: auth.RoleUser}

	if d := e.Decide(userA, ActionRead, ResourceUser, owner(1)); !d.Allowed {
		t.Fatalf("user must read own account")
	}
	if d := e.Decide(userA, ActionUpdate, ResourceUser, owner(1)); !d.Allowed {
		t.Fatalf("user must update own account")
	}
	if d := e.Decide(userA, ActionDelete, ResourceUser, owner(1)); d.Allowed {
		t.Fatalf("account deletion is admin only")
	}
	if d := e.Decide(userA, ActionAssignRole, ResourceUser, nil); d.Allowed {
		t.Fatalf("user must never assign roles")
	}
	if d := e.Decide(userA, ActionAssignRole, ResourceUser, owner(1)); d.Allowed {
		t.Fatalf("user must never assign roles, even on own account")
	}
	if d := e.Decide(userA, ActionCreate, ResourceUser, nil); d.Allowed {
		t.Fatalf("creating accounts through the API is admin only")
	}
}

func TestDecide_ReportsAdminOnly(t *testing.T) {
	e := newTestEngine(t)
	userA := auth.Principal{ID: 1, Role: auth.RoleUser}

	for _, act := range allActions {
		if d := e.Decide(userA, act, ResourceReport, nil); d.Allowed {
			t.Fatalf("user allowed %s on reports", act)
		}
	}
}

func TestDecide_UnknownRoleFailsClosed(t *testing.T) {
	e := newTestEngine(t)

	for _, role := range []auth.Role{"", "superuser", "ADMIN"} {
		p := auth.Principal{ID: 1, Role: role}
		for _, res := range allResources {
			for _, act := range allActions {
				d := e.Decide(p, act, res, owner(1))
				if d.Allowed {
					t.Fatalf("role %q allowed %s on %s", role, act, res)
				}
				if !errors.Is(d.Err(), apperr.ErrForbidden) {
					t.Fatalf("expected Forbidden, got %v", d.Err())
				}
			}
		}
	}
}

func TestDecide_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	userB := auth.Principal{ID: 2, Role: auth.RoleUser}

	first := e.Decide(userB, ActionDelete, ResourcePet, owner(1))
	for i := 0; i < 50; i++ {
		if got := e.Decide(userB, ActionDelete, ResourcePet, owner(1)); got != first {
			t.Fatalf("decision changed on call %d: %+v vs %+v", i, got, first)
		}
	}
}

func TestDecide_RecordsMetrics(t *testing.T) {
	e := newTestEngine(t)
	userB := auth.Principal{ID: 2, Role: auth.RoleUser}

	c := DecisionsTotal.WithLabelValues("user", "reminder", "delete", "deny")
	before := testutil.ToFloat64(c)
	e.Decide(userB, ActionDelete, ResourceReminder, owner(1))
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("expected deny counter to increase by 1, got %v -> %v", before, got)
	}
}
