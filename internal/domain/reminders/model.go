package reminders

import "time"

// Reminder: Type es texto libre ("vacuna", "desparasitación", ...).
type Reminder struct {
	ID    int64
	PetID int64

	Type  string
	Date  time.Time
	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
