//go:build integration

package postgres

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"pet-clinic-api/internal/apperr"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/domain/appointments"
	"pet-clinic-api/internal/domain/medicalrecords"
	"pet-clinic-api/internal/domain/medications"
	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/reminders"
	"pet-clinic-api/internal/domain/users"
	"pet-clinic-api/internal/ports/auth"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := exec.CommandContext(ctx, "docker", "info").Run(); err != nil {
		t.Skip("Skipping test: Docker not available")
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "clinic",
				"POSTGRES_PASSWORD": "clinic",
				"POSTGRES_DB":       "clinic",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}

	db, err := Open(ctx, "postgres://clinic:clinic@"+endpoint+"/clinic?sslmode=disable")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// dos veces: debe ser idempotente
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	return NewStore(db)
}

func TestPostgres_CascadeAndRollback(t *testing.T) {
	s := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	ownerID, err := s.Users().Create(ctx, users.User{Username: "ana", Email: "ana@example.com", PasswordHash: "x", Role: auth.RoleUser, CreatedAt: now})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.Users().Create(ctx, users.User{Username: "ANA", Email: "otra@example.com", PasswordHash: "x", Role: auth.RoleUser, CreatedAt: now}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict on duplicated username, got %v", err)
	}

	petID, err := s.Pets().Create(ctx, pets.Pet{OwnerID: ownerID, Name: "Luna", Species: "dog", Gender: pets.GenderFemale, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.Appointments().Create(ctx, appointments.Appointment{PetID: petID, Date: now, Provider: "Dr. Paz", CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("create appointment: %v", err)
		}
	}
	if _, err := s.MedicalRecords().Create(ctx, medicalrecords.Record{PetID: petID, RecordDate: now, Description: "control", CreatedAt: now}); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if _, err := s.Reminders().Create(ctx, reminders.Reminder{PetID: petID, Type: "vacuna", Date: now, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	if _, err := s.Medications().Create(ctx, medications.Medication{PetID: petID, Name: "amoxicilina", StartDate: now, CreatedAt: now}); err != nil {
		t.Fatalf("create medication: %v", err)
	}

	if err := s.Pets().Delete(ctx, petID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict deleting pet with dependents, got %v", err)
	}
	if _, err := s.Appointments().Create(ctx, appointments.Appointment{PetID: 9999, Date: now, Provider: "x", CreatedAt: now, UpdatedAt: now}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for missing pet, got %v", err)
	}

	boom := errors.New("boom")
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Appointments().DeleteByPet(ctx, petID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	items, err := s.Appointments().List(ctx, appointments.ListFilter{OwnerID: &ownerID})
	if err != nil || len(items) != 2 {
		t.Fatalf("expected 2 appointments after rollback, got %d (%v)", len(items), err)
	}

	coord := authz.NewCoordinator(authz.CoordinatorOptions{
		Tx: s,
		Dependents: []authz.Dependent{
			{Resource: authz.ResourceAppointment, Store: s.Appointments()},
			{Resource: authz.ResourceMedicalRecord, Store: s.MedicalRecords()},
			{Resource: authz.ResourceReminder, Store: s.Reminders()},
			{Resource: authz.ResourceMedication, Store: s.Medications()},
		},
		Pets:    s.Pets(),
		Users:   s.Users(),
		Timeout: 5 * time.Second,
	})

	res, err := coord.DeleteUserCascade(ctx, ownerID)
	if err != nil {
		t.Fatalf("DeleteUserCascade: %v", err)
	}
	if got := res.Total(); got != 7 {
		t.Fatalf("expected 7 rows removed, got %d (%v)", got, res.Removed)
	}
	if _, err := s.Users().GetByID(ctx, ownerID); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
}
