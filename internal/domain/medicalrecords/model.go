package medicalrecords

import "time"

// Record es una entrada de la historia clínica de un pet.
type Record struct {
	ID    int64
	PetID int64

	RecordDate  time.Time
	Description string

	CreatedAt time.Time
}
