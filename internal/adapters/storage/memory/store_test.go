package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/domain/appointments"
	"pet-clinic-api/internal/domain/medicalrecords"
	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/reports"
	"pet-clinic-api/internal/domain/users"
	"pet-clinic-api/internal/ports/auth"
)

func seed(t *testing.T, s *Store) (ownerA, ownerB, petA, petB int64) {
	t.Helper()
	ctx := context.Background()

	var err error
	if ownerA, err = s.Users().Create(ctx, users.User{Username: "ana", Email: "ana@example.com", Role: auth.RoleUser}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if ownerB, err = s.Users().Create(ctx, users.User{Username: "beto", Email: "beto@example.com", Role: auth.RoleUser}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if petA, err = s.Pets().Create(ctx, pets.Pet{OwnerID: ownerA, Name: "Luna", Species: "dog"}); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if petB, err = s.Pets().Create(ctx, pets.Pet{OwnerID: ownerB, Name: "Michi", Species: "cat"}); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return ownerA, ownerB, petA, petB
}

func TestUsers_UniqueIgnoresCase(t *testing.T) {
	s := NewStore()
	seed(t, s)

	_, err := s.Users().Create(context.Background(), users.User{Username: "ANA", Email: "otra@example.com"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}

	_, err = s.Users().Create(context.Background(), users.User{Username: "carla", Email: "Beto@Example.com"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict for email, got %v", err)
	}

	u, err := s.Users().GetByUsername(context.Background(), "Ana")
	if err != nil || u.Username != "ana" {
		t.Fatalf("GetByUsername: %+v %v", u, err)
	}
}

func TestRunInTx_RollbackRestoresEverything(t *testing.T) {
	s := NewStore()
	_, _, petA, _ := seed(t, s)
	ctx := context.Background()

	if _, err := s.Appointments().Create(ctx, appointments.Appointment{PetID: petA, Provider: "Dr. Paz"}); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Appointments().DeleteByPet(ctx, petA); err != nil {
			return err
		}
		if err := s.Pets().Delete(ctx, petA); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.Pets().GetByID(ctx, petA); err != nil {
		t.Fatalf("pet should survive rollback: %v", err)
	}
	items, _ := s.Appointments().List(ctx, appointments.ListFilter{PetID: &petA})
	if len(items) != 1 {
		t.Fatalf("expected 1 appointment after rollback, got %d", len(items))
	}
}

func TestRunInTx_PanicRollsBack(t *testing.T) {
	s := NewStore()
	_, _, petA, _ := seed(t, s)
	ctx := context.Background()

	func() {
		defer func() { _ = recover() }()
		_ = s.RunInTx(ctx, func(ctx context.Context) error {
			_, _ = s.Appointments().DeleteByPet(ctx, petA)
			_ = s.Pets().Delete(ctx, petA)
			panic("boom")
		})
	}()

	if _, err := s.Pets().GetByID(ctx, petA); err != nil {
		t.Fatalf("pet should survive panic: %v", err)
	}
}

func TestRunInTx_CommitIsVisible(t *testing.T) {
	s := NewStore()
	_, _, petA, _ := seed(t, s)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		return s.Pets().Delete(ctx, petA)
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if _, err := s.Pets().GetByID(ctx, petA); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pet gone, got %v", err)
	}
}

func TestCancelledContext_StoreUnavailable(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Pets().GetByID(ctx, 1)
	if !errors.Is(err, apperr.ErrStoreUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected StoreUnavailable wrapping Canceled, got %v", err)
	}
}

func TestForeignKeys(t *testing.T) {
	s := NewStore()
	ownerA, _, petA, _ := seed(t, s)
	ctx := context.Background()

	if _, err := s.Appointments().Create(ctx, appointments.Appointment{PetID: 999}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for missing pet, got %v", err)
	}
	if _, err := s.MedicalRecords().Create(ctx, medicalrecords.Record{PetID: petA, Description: "x"}); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := s.Pets().Delete(ctx, petA); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict deleting pet with records, got %v", err)
	}
	if err := s.Users().Delete(ctx, ownerA); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict deleting owner with pets, got %v", err)
	}
}

func TestOwnerFilterJoinsThroughPets(t *testing.T) {
	s := NewStore()
	ownerA, _, petA, petB := seed(t, s)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, petID := range []int64{petA, petB, petA} {
		_, err := s.MedicalRecords().Create(ctx, medicalrecords.Record{
			PetID:       petID,
			RecordDate:  base.AddDate(0, 0, i),
			Description: "control",
		})
		if err != nil {
			t.Fatalf("create record: %v", err)
		}
	}

	got, err := s.MedicalRecords().List(ctx, medicalrecords.ListFilter{OwnerID: &ownerA})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records of owner A, got %d", len(got))
	}
	if !got[0].RecordDate.After(got[1].RecordDate) {
		t.Fatalf("expected newest first")
	}

	got, _ = s.MedicalRecords().List(ctx, medicalrecords.ListFilter{Limit: 1})
	if len(got) != 1 {
		t.Fatalf("expected limit 1, got %d", len(got))
	}
}

func TestReportAppointmentsJoinsPet(t *testing.T) {
	s := NewStore()
	_, _, petA, petB := seed(t, s)
	ctx := context.Background()

	when := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	_, _ = s.Appointments().Create(ctx, appointments.Appointment{PetID: petA, Date: when, Provider: "Dr. Paz"})
	_, _ = s.Appointments().Create(ctx, appointments.Appointment{PetID: petB, Date: when.Add(time.Hour), Provider: "Dr. Paz"})

	rows, err := s.Reports().Appointments(ctx, reports.AppointmentFilter{PetSpecies: "CAT"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rows) != 1 || rows[0].PetName != "Michi" || rows[0].Provider != "Dr. Paz" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
