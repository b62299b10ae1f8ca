package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/platform/validation"
	"pet-clinic-api/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "user not found")

type Service struct {
	repo       Repository
	tokens     auth.TokenIssuer
	bcryptCost int
	now        func() time.Time
}

func NewService(repo Repository, tokens auth.TokenIssuer, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type CreateInput struct {
	RegisterInput
	Role auth.Role `json:"role" validate:"omitempty,oneof=admin user"`
}

// Register crea una cuenta con rol user y devuelve su token. El cliente no
// puede elegir el rol.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, string, error) {
	u, err := s.create(ctx, in, auth.RoleUser)
	if err != nil {
		return User{}, "", err
	}
	token, err := s.tokens.Issue(u.Principal())
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// Create es el alta hecha por un admin; puede fijar el rol.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	role := in.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !role.Valid() {
		return User{}, apperr.New(apperr.KindInvalidInput, "role must be one of: admin user")
	}
	return s.create(ctx, in.RegisterInput, role)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role auth.Role) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, err
	}
	u.ID = id
	return u, nil
}

// Login no distingue entre usuario inexistente y contraseña incorrecta.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", apperr.ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Principal())
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists lo usan otros módulos para validar referencias a usuarios.
func (s *Service) Exists(ctx context.Context, id int64) error {
	_, err := s.repo.GetByID(ctx, id)
	return err
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, error) {
	return s.repo.List(ctx, filter)
}

type UpdateInput struct {
	Username *string    `json:"username" validate:"omitnil,min=3,max=50"`
	Email    *string    `json:"email" validate:"omitnil,email,max=254"`
	Password *string    `json:"password" validate:"omitnil,min=6,max=72"`
	Role     *auth.Role `json:"role" validate:"omitnil,oneof=admin user"`
}

// RoleChange indica si in cambia el rol actual de u.
func (in UpdateInput) RoleChange(u User) bool {
	return in.Role != nil && *in.Role != u.Role
}

// Update aplica los campos presentes. El permiso para cambiar el rol se
// decide antes, en el handler.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	validation.TrimStrings(in.Username, in.Email)
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = hash
	}
	if in.Role != nil {
		u.Role = *in.Role
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// EnsureAdmin crea la cuenta admin inicial si todavía no existe.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	if strings.TrimSpace(email) == "" {
		email = username + "@localhost.localdomain"
	}
	_, err := s.create(ctx, RegisterInput{Username: username, Email: email, Password: password}, auth.RoleAdmin)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
