package users

import (
	"context"
	"net/http"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/httpx"
	"pet-clinic-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// Cascader borra un usuario con todos sus pets y dependientes.
type Cascader interface {
	DeleteUserCascade(ctx context.Context, userID int64) (authz.CascadeResult, error)
}

// RegisterAuthRoutes monta las rutas públicas de registro y login.
func RegisterAuthRoutes(r chi.Router, svc *Service) {
	r.Post("/auth/register", registerHandler(svc))
	r.Post("/auth/login", loginHandler(svc))
}

// RegisterRoutes monta las rutas que requieren sesión.
func RegisterRoutes(r chi.Router, svc *Service, az *authz.Authorizer, cascade Cascader) {
	r.Get("/auth/me", meHandler(svc))

	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc, az))
		ur.Post("/", createUserHandler(svc, az))
		ur.Get("/{userID}", getUserHandler(svc, az))
		ur.Put("/{userID}", updateUserHandler(svc, az))
		ur.Patch("/{userID}", updateUserHandler(svc, az))
		ur.Delete("/{userID}", deleteUserHandler(az, cascade))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// UserResponse nunca incluye el hash de la contraseña.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type deleteResponse struct {
	Deleted map[authz.ResourceType]int64 `json:"deleted"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea una cuenta con rol user y devuelve un token. El rol no se puede elegir.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body RegisterInput true "Datos de la cuenta"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} httpx.ErrorResponse "InvalidInput"
// @Failure 409 {object} httpx.ErrorResponse "Conflict"
// @Router /auth/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		_, token, err := svc.Register(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, tokenResponse{Token: token})
	}
}

// loginHandler godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} httpx.ErrorResponse "InvalidCredentials"
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		token, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// meHandler godoc
// @Summary Usuario actual
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} httpx.ErrorResponse "MissingAuthHeader / MissingToken / TokenExpired / TokenMalformed"
// @Router /auth/me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		u, err := svc.GetByID(r.Context(), p.ID)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Description Admin ve todas las cuentas; un usuario sólo la propia.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users [get]
func listUsersHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourceUser)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		items, err := svc.List(r.Context(), ListFilter{ID: scope.Owner()})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, ToResponses(items))
	}
}

// createUserHandler godoc
// @Summary Crear usuario (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Datos de la cuenta; role opcional"
// @Success 201 {object} UserResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 409 {object} httpx.ErrorResponse "Conflict"
// @Router /users [post]
func createUserHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceUser, 0); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var req CreateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		u, err := svc.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// getUserHandler godoc
// @Summary Ver usuario
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path int true "ID del usuario"
// @Success 200 {object} UserResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /users/{userID} [get]
func getUserHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "userID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionRead, authz.ResourceUser, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		u, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// updateUserHandler godoc
// @Summary Actualizar usuario
// @Description Un usuario puede editar su propia cuenta pero nunca su rol; cambiar el rol es sólo para admin.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path int true "ID del usuario"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} UserResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Failure 409 {object} httpx.ErrorResponse "Conflict"
// @Router /users/{userID} [put]
// @Router /users/{userID} [patch]
func updateUserHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "userID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionUpdate, authz.ResourceUser, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var req UpdateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if req.RoleChange(current) {
			if err := az.Allow(p, authz.ActionAssignRole, authz.ResourceUser); err != nil {
				httpx.WriteError(w, err)
				return
			}
		}

		u, err := svc.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// deleteUserHandler godoc
// @Summary Borrar usuario (admin)
// @Description Borra la cuenta, sus mascotas y todo lo que depende de ellas en una transacción.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path int true "ID del usuario"
// @Success 200 {object} deleteResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Failure 500 {object} httpx.ErrorResponse "CascadeFailed"
// @Router /users/{userID} [delete]
func deleteUserHandler(az *authz.Authorizer, cascade Cascader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "userID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionDelete, authz.ResourceUser, id); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if id == p.ID {
			httpx.WriteError(w, apperr.New(apperr.KindInvalidInput, "you cannot delete your own account"))
			return
		}

		res, err := cascade.DeleteUserCascade(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, deleteResponse{Deleted: res.Removed})
	}
}

func toUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func ToResponses(items []User) []UserResponse {
	out := make([]UserResponse, 0, len(items))
	for _, u := range items {
		out = append(out, toUserResponse(u))
	}
	return out
}
