package medications

import "time"

type Medication struct {
	ID    int64
	PetID int64

	Name string

	Dosage   string // "2"
	DoseUnit string // "ml", "mg", etc.

	Frequency string // texto libre: "cada 12h"

	StartDate time.Time
	EndDate   *time.Time

	Notes string

	CreatedAt time.Time
}

// ActiveAt: sin EndDate el tratamiento sigue vigente.
func (m Medication) ActiveAt(t time.Time) bool {
	if t.Before(m.StartDate) {
		return false
	}
	return m.EndDate == nil || !t.After(*m.EndDate)
}
