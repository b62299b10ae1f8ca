// Package memory implementa todos los repositorios en memoria, para dev y
// tests. Un único Store guarda todas las tablas detrás de un RWMutex, así
// RunInTx puede tomar una foto del estado y restaurarla si algo falla.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/domain/appointments"
	"pet-clinic-api/internal/domain/medicalrecords"
	"pet-clinic-api/internal/domain/medications"
	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/reminders"
	"pet-clinic-api/internal/domain/users"
)

type table[T any] struct {
	rows map[int64]T
	seq  int64
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[int64]T)}
}

func (t *table[T]) next() int64 {
	t.seq++
	return t.seq
}

func (t table[T]) clone() table[T] {
	return table[T]{rows: maps.Clone(t.rows), seq: t.seq}
}

// sorted devuelve las filas que pasan keep, ordenadas por ID.
func (t table[T]) sorted(keep func(T) bool) []T {
	ids := slices.Sorted(maps.Keys(t.rows))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v := t.rows[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

type tables struct {
	users        table[users.User]
	pets         table[pets.Pet]
	appointments table[appointments.Appointment]
	records      table[medicalrecords.Record]
	reminders    table[reminders.Reminder]
	medications  table[medications.Medication]
}

func (t tables) clone() tables {
	return tables{
		users:        t.users.clone(),
		pets:         t.pets.clone(),
		appointments: t.appointments.clone(),
		records:      t.records.clone(),
		reminders:    t.reminders.clone(),
		medications:  t.medications.clone(),
	}
}

// ownerOf devuelve el dueño del pet, 0 si el pet no existe.
func (t *tables) ownerOf(petID int64) int64 {
	return t.pets.rows[petID].OwnerID
}

func (t *tables) petDependents(petID int64) int {
	n := 0
	for _, a := range t.appointments.rows {
		if a.PetID == petID {
			n++
		}
	}
	for _, rec := range t.records.rows {
		if rec.PetID == petID {
			n++
		}
	}
	for _, rem := range t.reminders.rows {
		if rem.PetID == petID {
			n++
		}
	}
	for _, m := range t.medications.rows {
		if m.PetID == petID {
			n++
		}
	}
	return n
}

var (
	errPetMissing   = apperr.New(apperr.KindInvalidInput, "pet does not exist")
	errOwnerMissing = apperr.New(apperr.KindInvalidInput, "owner does not exist")
	errPetHasRows   = apperr.New(apperr.KindConflict, "pet still has dependent records")
	errUserHasPets  = apperr.New(apperr.KindConflict, "user still owns pets")
)

type Store struct {
	mu sync.RWMutex
	t  tables
}

func NewStore() *Store {
	return &Store{t: tables{
		users:        newTable[users.User](),
		pets:         newTable[pets.Pet](),
		appointments: newTable[appointments.Appointment](),
		records:      newTable[medicalrecords.Record](),
		reminders:    newTable[reminders.Reminder](),
		medications:  newTable[medications.Medication](),
	}}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTx toma el lock de escritura durante todo fn. Si fn falla o hace
// panic se restaura la foto previa. Las llamadas anidadas se suman a la
// transacción en curso.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := alive(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	defer func() {
		if r := recover(); r != nil {
			s.t = snapshot
			panic(r)
		}
		if err != nil {
			s.t = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) read(ctx context.Context, fn func(t *tables) error) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(&s.t)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.t)
}

func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(&s.t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.t)
}

func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", err)
	}
	return nil
}

func ptrMatches[T comparable](want *T, got T) bool {
	return want == nil || *want == got
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	return to == nil || !t.After(*to)
}
