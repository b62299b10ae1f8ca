package appointments

import (
	"net/http"
	"strings"
	"time"

	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, az *authz.Authorizer) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc, az))
		ar.Get("/", listAppointmentsHandler(svc, az))
		ar.Get("/{appointmentID}", getAppointmentHandler(svc, az))
		ar.Put("/{appointmentID}", updateAppointmentHandler(svc, az))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc, az))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc, az))
	})
}

type appointmentResponse struct {
	ID        int64     `json:"id"`
	PetID     int64     `json:"pet_id"`
	Date      time.Time `json:"date"`
	Provider  string    `json:"provider"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createAppointmentHandler godoc
// @Summary Agendar turno
// @Description Sólo sobre una mascota propia (admin: cualquiera).
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Datos del turno; date en RFC3339"
// @Success 201 {object} appointmentResponse
// @Failure 400 {object} httpx.ErrorResponse "InvalidInput"
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "pet not found"
// @Router /appointments [post]
func createAppointmentHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		var req CreateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceAppointment, req.PetID); err != nil {
			httpx.WriteError(w, err)
			return
		}

		a, err := svc.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar turnos
// @Description Un usuario sólo ve los turnos de sus mascotas.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param pet_id query int false "Filtrar por mascota"
// @Param from query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (RFC3339, o YYYY-MM-DD con el día incluido)"
// @Param provider query string false "Profesional"
// @Success 200 {array} appointmentResponse
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourceAppointment)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		filter.OwnerID = scope.Owner()

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getAppointmentHandler godoc
// @Summary Ver turno
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param appointmentID path int true "ID del turno"
// @Success 200 {object} appointmentResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "appointmentID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionRead, authz.ResourceAppointment, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		a, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Actualizar turno
// @Description Mover el turno a otra mascota requiere poder crear turnos sobre ella.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointmentID path int true "ID del turno"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} appointmentResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /appointments/{appointmentID} [put]
// @Router /appointments/{appointmentID} [patch]
func updateAppointmentHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "appointmentID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionUpdate, authz.ResourceAppointment, id); err != nil {
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
			if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceAppointment, *req.PetID); err != nil {
				httpx.WriteError(w, err)
				return
			}
		}

		a, err := svc.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Cancelar turno
// @Tags appointments
// @Security BearerAuth
// @Param appointmentID path int true "ID del turno"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "appointmentID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionDelete, authz.ResourceAppointment, id); err != nil {
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

func parseListFilter(r *http.Request) (ListFilter, error) {
	var (
		filter ListFilter
		err    error
	)
	if filter.PetID, err = httpx.OptionalInt64Query(r, "pet_id"); err != nil {
		return ListFilter{}, err
	}
	if filter.From, err = httpx.OptionalTimeQuery(r, "from"); err != nil {
		return ListFilter{}, err
	}
	if filter.To, err = httpx.OptionalEndTimeQuery(r, "to"); err != nil {
		return ListFilter{}, err
	}
	filter.Provider = strings.TrimSpace(r.URL.Query().Get("provider"))
	return filter, nil
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		PetID:     a.PetID,
		Date:      a.Date,
		Provider:  a.Provider,
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
