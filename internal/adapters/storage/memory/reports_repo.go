package memory

import (
	"context"
	"slices"
	"strings"

	"pet-clinic-api/internal/domain/appointments"
	"pet-clinic-api/internal/domain/reports"
)

type reportRepo struct{ s *Store }

func (s *Store) Reports() reports.Repository { return reportRepo{s: s} }

// Appointments ignora turnos cuyo pet ya no existe (inner join).
func (r reportRepo) Appointments(ctx context.Context, filter reports.AppointmentFilter) ([]reports.AppointmentRow, error) {
	var out []reports.AppointmentRow
	err := r.s.read(ctx, func(t *tables) error {
		matched := t.appointments.sorted(func(a appointments.Appointment) bool {
			return inRange(a.Date, filter.From, filter.To) &&
				(filter.Provider == "" || strings.EqualFold(a.Provider, filter.Provider))
		})
		for _, a := range matched {
			p, ok := t.pets.rows[a.PetID]
			if !ok {
				continue
			}
			if filter.PetSpecies != "" && !strings.EqualFold(p.Species, filter.PetSpecies) {
				continue
			}
			out = append(out, reports.AppointmentRow{
				AppointmentID: a.ID,
				Date:          a.Date,
				Provider:      a.Provider,
				Reason:        a.Reason,
				PetID:         p.ID,
				PetName:       p.Name,
				PetSpecies:    p.Species,
				OwnerID:       p.OwnerID,
			})
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b reports.AppointmentRow) int {
		return a.Date.Compare(b.Date)
	})
	return out, err
}
