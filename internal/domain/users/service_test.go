package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	byID map[int64]User
	seq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) (int64, error) {
	for _, cur := range r.byID {
		if strings.EqualFold(cur.Username, u.Username) || strings.EqualFold(cur.Email, u.Email) {
			return 0, apperr.New(apperr.KindConflict, "username or email already exists")
		}
	}
	r.seq++
	u.ID = r.seq
	r.byID[u.ID] = u
	return u.ID, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]User, error) {
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		if filter.ID != nil && u.ID != *filter.ID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

type testIssuer struct {
	issued []auth.Principal
}

func (i *testIssuer) Issue(p auth.Principal) (string, error) {
	i.issued = append(i.issued, p)
	return "token-for-" + string(p.Role), nil
}

func newTestService() (*Service, *testRepo, *testIssuer) {
	repo := newTestRepo()
	iss := &testIssuer{}
	svc := NewService(repo, iss, bcrypt.MinCost)
	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo, iss
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_AlwaysUserRole(t *testing.T) {
	svc, repo, iss := newTestService()

	u, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "  alice ",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Role != auth.RoleUser {
		t.Fatalf("expected role user, got %s", u.Role)
	}
	if u.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", u.Username)
	}
	if token != "token-for-user" {
		t.Fatalf("unexpected token %q", token)
	}
	if len(iss.issued) != 1 || iss.issued[0].ID != u.ID {
		t.Fatalf("expected token issued for user %d, got %+v", u.ID, iss.issued)
	}

	stored := repo.byID[u.ID]
	if stored.PasswordHash == "secret123" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("hash does not match password: %v", err)
	}
}

func TestService_Register_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService()

	cases := map[string]RegisterInput{
		"short username": {Username: "al", Email: "al@example.com", Password: "secret123"},
		"bad email":      {Username: "alice", Email: "nope", Password: "secret123"},
		"short password": {Username: "alice", Email: "alice@example.com", Password: "123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), in)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Register_DuplicateIsConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	in := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"}
	if _, _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	in.Username = "ALICE"
	in.Email = "other@example.com"
	_, _, err := svc.Register(ctx, in)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestService_Create_AdminCanPickRole(t *testing.T) {
	svc, _, _ := newTestService()

	u, err := svc.Create(context.Background(), CreateInput{
		RegisterInput: RegisterInput{Username: "root", Email: "root@example.com", Password: "secret123"},
		Role:          auth.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Role != auth.RoleAdmin {
		t.Fatalf("expected admin, got %s", u.Role)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		RegisterInput: RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret123"},
		Role:          auth.Role("superuser"),
	})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for unknown role, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	if _, err := svc.Login(ctx, "alice", "wrong-pass"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected InvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "secret123"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected InvalidCredentials, got %v", err)
	}
}

func TestService_Update_RehashesPassword(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	before := repo.byID[u.ID].PasswordHash

	pass := "another-pass"
	if _, err := svc.Update(ctx, u.ID, UpdateInput{Password: &pass}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	after := repo.byID[u.ID].PasswordHash
	if after == before {
		t.Fatalf("expected new hash")
	}
	if _, err := svc.Login(ctx, "alice", "another-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if _, err := svc.Update(ctx, 999, UpdateInput{Password: &pass}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateInput_RoleChange(t *testing.T) {
	u := User{ID: 1, Role: auth.RoleUser}
	same := auth.RoleUser
	admin := auth.RoleAdmin

	if (UpdateInput{}).RoleChange(u) {
		t.Fatalf("nil role is not a change")
	}
	if (UpdateInput{Role: &same}).RoleChange(u) {
		t.Fatalf("same role is not a change")
	}
	if !(UpdateInput{Role: &admin}).RoleChange(u) {
		t.Fatalf("user -> admin is a change")
	}
}

func TestService_EnsureAdmin_Idempotent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "", "admin-pass")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !created {
		t.Fatalf("expected admin to be created")
	}

	created, err = svc.EnsureAdmin(ctx, "admin", "", "admin-pass")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created {
		t.Fatalf("second call must not create")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 user, got %d", len(repo.byID))
	}
	for _, u := range repo.byID {
		if u.Role != auth.RoleAdmin {
			t.Fatalf("expected admin role, got %s", u.Role)
		}
		if u.Email != "admin@localhost.localdomain" {
			t.Fatalf("unexpected default email %q", u.Email)
		}
	}
}

func TestService_Update_BlankFieldsRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	blank := "    "
	padded := "  al  "
	cases := map[string]UpdateInput{
		"blank username":   {Username: &blank},
		"short after trim": {Username: &padded},
		"blank email":      {Email: &blank},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Update(ctx, u.ID, in); !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}

	stored := repo.byID[u.ID]
	if stored.Username != "alice" || stored.Email != "alice@example.com" {
		t.Fatalf("user must stay unchanged, got %q / %q", stored.Username, stored.Email)
	}
}
