package pets

import (
	"context"
	"net/http"
	"time"

	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// Cascader borra un pet junto con sus dependientes.
type Cascader interface {
	DeletePetCascade(ctx context.Context, petID int64) (authz.CascadeResult, error)
}

func RegisterRoutes(r chi.Router, svc *Service, az *authz.Authorizer, cascade Cascader) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, az))
		pr.Get("/", listPetsHandler(svc, az))
		pr.Get("/{petID}", getPetHandler(svc, az))
		pr.Put("/{petID}", updatePetHandler(svc, az))
		pr.Patch("/{petID}", updatePetHandler(svc, az))
		pr.Delete("/{petID}", deletePetHandler(az, cascade))
	})
}

type createPetRequest struct {
	// Sólo se respeta si quien llama es admin.
	OwnerID *int64 `json:"owner_id"`
	CreateInput
}

type PetResponse struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Name           string    `json:"name"`
	Species        string    `json:"species"`
	Breed          string    `json:"breed"`
	Age            *int      `json:"age,omitempty"`
	Gender         Gender    `json:"gender"`
	MedicalHistory string    `json:"medical_history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type deleteResponse struct {
	Deleted map[authz.ResourceType]int64 `json:"deleted"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description El dueño es siempre quien llama; un admin puede indicar owner_id.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} PetResponse
// @Failure 400 {object} httpx.ErrorResponse "InvalidInput"
// @Failure 401 {object} httpx.ErrorResponse "MissingAuthHeader"
// @Router /pets [post]
func createPetHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		if err := az.AuthorizeCreate(r.Context(), p, authz.ResourcePet, 0); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var req createPetRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}

		ownerID := p.ID
		if p.IsAdmin() && req.OwnerID != nil {
			ownerID = *req.OwnerID
		}

		pet, err := svc.Create(r.Context(), ownerID, req.CreateInput)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toPetResponse(pet))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Admin ve todas (opcionalmente filtradas por owner_id); un usuario sólo las propias.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param owner_id query int false "Sólo admin"
// @Success 200 {array} PetResponse
// @Router /pets [get]
func listPetsHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourcePet)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		filter := ListFilter{OwnerID: scope.Owner()}
		if scope.All {
			owner, err := httpx.OptionalInt64Query(r, "owner_id")
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			filter.OwnerID = owner
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, ToResponses(items))
	}
}

// getPetHandler godoc
// @Summary Ver mascota
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Success 200 {object} PetResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "petID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionRead, authz.ResourcePet, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		pet, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toPetResponse(pet))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Campos omitidos no se modifican. owner_id sólo lo respeta un admin.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} PetResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /pets/{petID} [put]
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "petID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionUpdate, authz.ResourcePet, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var req UpdateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if !p.IsAdmin() {
			req.OwnerID = nil
		}

		pet, err := svc.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toPetResponse(pet))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Borra la mascota con sus turnos, historias clínicas, recordatorios y medicaciones en una transacción.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param petID path int true "ID de la mascota"
// @Success 200 {object} deleteResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Failure 500 {object} httpx.ErrorResponse "CascadeFailed"
// @Router /pets/{petID} [delete]
func deletePetHandler(az *authz.Authorizer, cascade Cascader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "petID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionDelete, authz.ResourcePet, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		res, err := cascade.DeletePetCascade(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, deleteResponse{Deleted: res.Removed})
	}
}

func toPetResponse(p Pet) PetResponse {
	return PetResponse{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Name:           p.Name,
		Species:        p.Species,
		Breed:          p.Breed,
		Age:            p.Age,
		Gender:         p.Gender,
		MedicalHistory: p.MedicalHistory,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToResponses también lo usa el reporte de mascotas.
func ToResponses(items []Pet) []PetResponse {
	out := make([]PetResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return out
}
