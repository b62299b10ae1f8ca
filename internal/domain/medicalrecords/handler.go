package medicalrecords

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
	r.Route("/medical-records", func(mr chi.Router) {
		mr.Post("/", createRecordHandler(svc, az))
		mr.Get("/", listRecordsHandler(svc, az))
		mr.Get("/{recordID}", getRecordHandler(svc, az))
		mr.Put("/{recordID}", updateRecordHandler(svc, az))
		mr.Patch("/{recordID}", updateRecordHandler(svc, az))
		mr.Delete("/{recordID}", deleteRecordHandler(svc, az))
	})
}

type recordResponse struct {
	ID          int64     `json:"id"`
	PetID       int64     `json:"pet_id"`
	RecordDate  time.Time `json:"record_date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// createRecordHandler godoc
// @Summary Agregar entrada a la historia clínica
// @Tags medical-records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Entrada; record_date opcional (RFC3339)"
// @Success 201 {object} recordResponse
// @Failure 400 {object} httpx.ErrorResponse "InvalidInput"
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "pet not found"
// @Router /medical-records [post]
func createRecordHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		var req CreateInput
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceMedicalRecord, req.PetID); err != nil {
			httpx.WriteError(w, err)
			return
		}

		rec, err := svc.Create(r.Context(), req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// listRecordsHandler godoc
// @Summary Listar historia clínica
// @Description Ordenado por record_date descendente.
// @Tags medical-records
// @Produce json
// @Security BearerAuth
// @Param pet_id query int false "Filtrar por mascota"
// @Param limit query int false "Máximo de entradas a devolver (1-200). Por defecto 50"
// @Param from query string false "Fecha mínima (RFC3339 o YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (RFC3339, o YYYY-MM-DD con el día incluido)"
// @Param q query string false "Texto de búsqueda libre en la descripción"
// @Success 200 {array} recordResponse
// @Router /medical-records [get]
func listRecordsHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		scope, err := az.ListScope(p, authz.ResourceMedicalRecord)
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

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getRecordHandler godoc
// @Summary Ver entrada de historia clínica
// @Tags medical-records
// @Produce json
// @Security BearerAuth
// @Param recordID path int true "ID de la entrada"
// @Success 200 {object} recordResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /medical-records/{recordID} [get]
func getRecordHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "recordID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionRead, authz.ResourceMedicalRecord, id); err != nil {
			httpx.WriteError(w, err)
			return
		}

		rec, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// updateRecordHandler godoc
// @Summary Corregir entrada de historia clínica
// @Tags medical-records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recordID path int true "ID de la entrada"
// @Param payload body UpdateInput true "Campos a modificar"
// @Success 200 {object} recordResponse
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /medical-records/{recordID} [put]
// @Router /medical-records/{recordID} [patch]
func updateRecordHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "recordID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionUpdate, authz.ResourceMedicalRecord, id); err != nil {
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
			if err := az.AuthorizeCreate(r.Context(), p, authz.ResourceMedicalRecord, *req.PetID); err != nil {
				httpx.WriteError(w, err)
				return
			}
		}

		rec, err := svc.Update(r.Context(), id, req)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// deleteRecordHandler godoc
// @Summary Eliminar entrada de historia clínica
// @Tags medical-records
// @Security BearerAuth
// @Param recordID path int true "ID de la entrada"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse "Forbidden"
// @Failure 404 {object} httpx.ErrorResponse "NotFound"
// @Router /medical-records/{recordID} [delete]
func deleteRecordHandler(svc *Service, az *authz.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := middleware.GetPrincipal(r.Context())

		id, err := httpx.IDParam(r, "recordID")
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if err := az.Authorize(r.Context(), p, authz.ActionDelete, authz.ResourceMedicalRecord, id); err != nil {
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

	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			return ListFilter{}, apperr.New(apperr.KindInvalidInput, "limit must be a positive integer")
		}
		filter.Limit = n
	}
	if filter.PetID, err = httpx.OptionalInt64Query(r, "pet_id"); err != nil {
		return ListFilter{}, err
	}
	if filter.From, err = httpx.OptionalTimeQuery(r, "from"); err != nil {
		return ListFilter{}, err
	}
	if filter.To, err = httpx.OptionalEndTimeQuery(r, "to"); err != nil {
		return ListFilter{}, err
	}
	filter.Query = r.URL.Query().Get("q")

	return filter, nil
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:          rec.ID,
		PetID:       rec.PetID,
		RecordDate:  rec.RecordDate,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
	}
}
