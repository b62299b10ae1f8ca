package reminders

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, az *authz.Authorizer) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Post("/", createReminderHandler(svc, az))
		rr.Get("/", listRemindersHandler(svc, az))
		rr.Get("/upcoming", upcomingRemindersHandler(svc, az))
		rr.Get("/{reminderID}", getReminderHandler(svc, az))
		rr.Put("/{reminderID}", updateReminderHandler(svc, az))
		rr.Patch("/{reminderID}", updateReminderHandler(svc, az))
		rr.Delete("/{reminderID}", deleteReminderHandler(svc, az))
	})
}

type reminderResponse struct {
	ID        int64     `json:"id"`
	PetID     int64     `json:"pet_id"`
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createReminderHandler godoc
// @Summary Crear recordatorio
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Recordatorio"
// @Success 201 {object} reminderResponse
// @Failure 400 {object} httpx.ErrorResponse "InvalidInput"
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "pet not found"
// @Router /reminders [post]
func createReminderHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		var req CreateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceReminder, req.PetID); err != nil {
			httpx.WriteError(w, err)
			return
		}

		rem, err := svc.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toReminderResponse(rem))
	}
}

// listRemindersHandler godoc
// @Summary Listar recordatorios
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param pet_id query int false "Filtrar por mascota"
// @Param type query string false "Tipo de recordatorio"
// @Param from query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (RFC3339, o YYYY-MM-DD con el día incluido)"
// @Success 200 {array} reminderResponse
// @Router /reminders [get]
func listRemindersHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourceReminder)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		var filter ListFilter
		if filter.PetID, err = httpx.OptionalInt64Query(r, "pet_id"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if filter.From, err = httpx.OptionalTimeQuery(r, "from"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if filter.To, err = httpx.OptionalEndTimeQuery(r, "to"); err != nil {
			httpx.WriteError(w, err)
			return
		}
		filter.Type = r.URL.Query().Get("type")
		filter.OwnerID = scope.Owner()

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponses(items))
	}
}

// upcomingRemindersHandler godoc
// @Summary Próximos recordatorios
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param days query int false "Ventana en días. Por defecto 7"
// @Success 200 {array} reminderResponse
// @Router /reminders/upcoming [get]
func upcomingRemindersHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourceReminder)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		days := 7
		if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				httpx.WriteError(w, apperr.New(apperr.KindInvalidInput, "days must be an integer"))
				return
			}
			days = n
		}

		items, err := svc.Upcoming(r.Context(), scope.Owner(), days)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponses(items))
	}
}

// getReminderHandler godoc
// @Summary Ver recordatorio
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param reminderID path int true "ID del recordatorio"
// @Success 200 {object} reminderResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /reminders/{reminderID} [get]
func getReminderHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "reminderID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionRead, authz.ResourceReminder, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		rem, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponse(rem))
	}
}

// updateReminderHandler godoc
// @Summary Actualizar recordatorio
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reminderID path int true "ID del recordatorio"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} reminderResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /reminders/{reminderID} [put]
// @Router /reminders/{reminderID} [patch]
func updateReminderHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "reminderID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionUpdate, authz.ResourceReminder, id); err != nil {
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
			if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceReminder, *req.PetID); err != nil {
				httpx.WriteError(w, err)
				return
			}
		}

		rem, err := svc.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponse(rem))
	}
}

// deleteReminderHandler godoc
// @Summary Eliminar recordatorio
// @Tags reminders
// @Security BearerAuth
// @Param reminderID path int true "ID del recordatorio"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /reminders/{reminderID} [delete]
func deleteReminderHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "reminderID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionDelete, authz.ResourceReminder, id); err != nil {
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

func toReminderResponse(rem Reminder) reminderResponse {
	return reminderResponse{
		ID:        rem.ID,
		PetID:     rem.PetID,
		Type:      rem.Type,
		Date:      rem.Date,
		Notes:     rem.Notes,
		CreatedAt: rem.CreatedAt,
		UpdatedAt: rem.UpdatedAt,
	}
}

func toReminderResponses(items []Reminder) []reminderResponse {
	out := make([]reminderResponse, 0, len(items))
	for _, rem := range items {
		out = append(out, toReminderResponse(rem))
	}
	return out
}
