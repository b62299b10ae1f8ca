package medications

import (
	"net/http"
	"strconv"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, az *authz.Authorizer) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc, az))
		mr.Get("/", listMedicationsHandler(svc, az))
		mr.Get("/{medicationID}", getMedicationHandler(svc, az))
		mr.Put("/{medicationID}", updateMedicationHandler(svc, az))
		mr.Patch("/{medicationID}", updateMedicationHandler(svc, az))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc, az))
	})
}

type medicationResponse struct {
	ID        int64      `json:"id"`
	PetID     int64      `json:"pet_id"`
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	DoseUnit  string     `json:"dose_unit"`
	Frequency string     `json:"frequency"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     string     `json:"notes"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// createMedicationHandler godoc
// @Summary Registrar medicación
// @Tags medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Tratamiento"
// @Success 201 {object} medicationResponse
// @Failure 400 {object} httpx.ErrorResponse "InvalidInput"
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "pet not found"
// @Router /medications [post]
func createMedicationHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		var req CreateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceMedication, req.PetID); err != nil {
			httpx.WriteError(w, err)
			return
		}

		m, err := svc.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toMedicationResponse(m, time.Now()))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicaciones
// @Tags medications
// @Produce json
// @Security BearerAuth
// @Param pet_id query int false "Filtrar por mascota"
// @Param name query string false "Nombre del medicamento"
// @Param active query bool false "Sólo tratamientos vigentes"
// @Success 200 {array} medicationResponse
// @Router /medications [get]
func listMedicationsHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourceMedication)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		var filter ListFilter
		if filter.PetID, err = httpx.OptionalInt64Query(r, "pet_id"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		filter.Name = r.URL.Query().Get("name")
		filter.OwnerID = scope.Owner()

		active := false
		if v := r.URL.Query().Get("active"); v != "" {
			b, convErr := strconv.ParseBool(v)
			if convErr != nil {
				httpx.WriteError(w, apperr.New(apperr.KindInvalidInput, "active must be a boolean"))
				return
			}
			active = b
		}

		items, err := svc.List(r.Context(), filter, active)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		now := time.Now()
		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m, now))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Ver medicación
// @Tags medications
// @Produce json
// @Security BearerAuth
// @Param medicationID path int true "ID de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "medicationID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionRead, authz.ResourceMedication, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		m, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toMedicationResponse(m, time.Now()))
	}
}

// updateMedicationHandler godoc
// @Summary Actualizar medicación
// @Tags medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param medicationID path int true "ID de la medicación"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} medicationResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /medications/{medicationID} [put]
// @Router /medications/{medicationID} [patch]
func updateMedicationHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "medicationID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionUpdate, authz.ResourceMedication, id); err != nil {
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
		if req.MovesPet(current) {
			if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceMedication, *req.PetID); err != nil {
				httpx.WriteError(w, err)
				return
			}
		}

		m, err := svc.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toMedicationResponse(m, time.Now()))
	}
}

// deleteMedicationHandler godoc
// @Summary Eliminar medicación
// @Tags medications
// @Security BearerAuth
// @Param medicationID path int true "ID de la medicación"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "medicationID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionDelete, authz.ResourceMedication, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toMedicationResponse(m Medication, now time.Time) medicationResponse {
	return medicationResponse{
		ID:        m.ID,
		PetID:     m.PetID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		DoseUnit:  m.DoseUnit,
		Frequency: m.Frequency,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Notes:     m.Notes,
		Active:    m.ActiveAt(now.UTC()),
		CreatedAt: m.CreatedAt,
	}
}
