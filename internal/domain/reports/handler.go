package reports

import (
	"net/http"
	"strings"
	"time"

	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/users"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/httpx"
	"pet-clinic-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /reports. Todos los reportes son sólo para admin.
func RegisterRoutes(r chi.Router, svc *Service, az *authz.Authorizer) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Get("/appointments", appointmentsReportHandler(svc, az))
		rr.Get("/pets", petsReportHandler(svc, az))
		rr.Get("/users", usersReportHandler(svc, az))
	})
}

type appointmentRowResponse struct {
	AppointmentID int64     `json:"appointment_id"`
	Date          time.Time `json:"date"`
	Provider      string    `json:"provider"`
	Reason        string    `json:"reason"`
	PetID         int64     `json:"pet_id"`
	PetName       string    `json:"pet_name"`
	PetSpecies    string    `json:"pet_species"`
	OwnerID       int64     `json:"owner_id"`
}

// appointmentsReportHandler godoc
// @Summary Reporte de turnos (admin)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param end_date query string false "Fecha máxima (RFC3339, o YYYY-MM-DD con el día incluido)"
// @Param provider query string false "Profesional"
// @Param pet_type query string false "Especie de la mascota"
// @Success 200 {array} appointmentRowResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Router /reports/appointments [get]
func appointmentsReportHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())
		if err := az.Allow(p, authz.ActionRead, authz.ResourceReport); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var (
			filter AppointmentFilter
			err    error
		)
		if filter.From, err = httpx.OptionalTimeQuery(r, "start_date"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if filter.To, err = httpx.OptionalEndTimeQuery(r, "end_date"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		filter.Provider = r.URL.Query().Get("provider")
		filter.PetSpecies = r.URL.Query().Get("pet_type")

		rows, err := svc.Appointments(r.Context(), filter)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		out := make([]appointmentRowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, appointmentRowResponse(row))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// petsReportHandler godoc
// @Summary Reporte de mascotas (admin)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param species query string false "Especie"
// @Param gender query string false "male, female o unknown"
// @Param min_age query int false "Edad mínima"
// @Param max_age query int false "Edad máxima"
// @Param owner_id query int false "Dueño"
// @Success 200 {array} pets.PetResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Router /reports/pets [get]
func petsReportHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())
		if err := az.Allow(p, authz.ActionRead, authz.ResourceReport); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var (
			filter pets.ListFilter
			err    error
		)
		if filter.OwnerID, err = httpx.OptionalInt64Query(r, "owner_id"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if filter.MinAge, err = httpx.OptionalIntQuery(r, "min_age"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if filter.MaxAge, err = httpx.OptionalIntQuery(r, "max_age"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		filter.Species = strings.TrimSpace(r.URL.Query().Get("species"))
		filter.Gender = pets.Gender(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("gender"))))

		items, err := svc.Pets(r.Context(), filter)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, pets.ToResponses(items))
	}
}

// usersReportHandler godoc
// @Summary Reporte de usuarios (admin)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin o user"
// @Param start_date query string false "Alta desde (RFC3339 o YYYY-MM-DD)"
// @Param end_date query string false "Alta hasta (RFC3339, o YYYY-MM-DD con el día incluido)"
// @Success 200 {array} users.UserResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Router /reports/users [get]
func usersReportHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())
		if err := az.Allow(p, authz.ActionRead, authz.ResourceReport); err != nil {
			httpx.WriteError(w, err)
			return
		}

		var (
			filter users.ListFilter
			err    error
		)
		if filter.From, err = httpx.OptionalTimeQuery(r, "start_date"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if filter.To, err = httpx.OptionalEndTimeQuery(r, "end_date"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		filter.Role = auth.Role(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("role"))))

		items, err := svc.Users(r.Context(), filter)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, users.ToResponses(items))
	}
}
