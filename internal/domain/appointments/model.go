package appointments

import "time"

// Appointment no tiene dueño propio: pertenece al dueño de PetID.
type Appointment struct {
	ID    int64
	PetID int64

	Date     time.Time
	Provider string
	Reason   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
