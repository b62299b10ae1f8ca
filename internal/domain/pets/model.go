package pets

import "time"

// Gender define el sexo de la mascota.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Pet es la raíz de la cadena de propiedad: turnos, historias clínicas,
// recordatorios y medicaciones pertenecen al dueño del pet.
type Pet struct {
	ID      int64
	OwnerID int64

	Name    string
	Species string
	Breed   string
	Age     *int
	Gender  Gender

	MedicalHistory string

	CreatedAt time.Time
	UpdatedAt time.Time
}
