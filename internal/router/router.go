package router

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pet-clinic-api/internal/adapters/auth/jwt"
	mem "pet-clinic-api/internal/adapters/storage/memory"
	pg "pet-clinic-api/internal/adapters/storage/postgres"
	"pet-clinic-api/internal/authz"
	"pet-clinic-api/internal/config"
	_ "pet-clinic-api/internal/docs"
	"pet-clinic-api/internal/domain/appointments"
	"pet-clinic-api/internal/domain/medicalrecords"
	"pet-clinic-api/internal/domain/medications"
	"pet-clinic-api/internal/domain/pets"
	"pet-clinic-api/internal/domain/reminders"
	"pet-clinic-api/internal/domain/reports"
	"pet-clinic-api/internal/domain/users"
	"pet-clinic-api/internal/middleware"
	"pet-clinic-api/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Options struct {
	Auth     config.AuthConfig
	Security config.SecurityConfig

	// Deadline de cada llamada al store desde resolver y cascada.
	StoreTimeout time.Duration

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger
}

// stores agrupa los repositorios de un backend concreto.
type stores struct {
	tx           authz.TxManager
	users        users.Repository
	pets         pets.Repository
	appointments appointments.Repository
	records      medicalrecords.Repository
	reminders    reminders.Repository
	medications  medications.Repository
	reports      reports.Repository
}

func newStores(db *sql.DB) stores {
	if db != nil {
		s := pg.NewStore(db)
		return stores{
			tx:           s,
			users:        s.Users(),
			pets:         s.Pets(),
			appointments: s.Appointments(),
			records:      s.MedicalRecords(),
			reminders:    s.Reminders(),
			medications:  s.Medications(),
			reports:      s.Reports(),
		}
	}

	s := mem.NewStore()
	return stores{
		tx:           s,
		users:        s.Users(),
		pets:         s.Pets(),
		appointments: s.Appointments(),
		records:      s.MedicalRecords(),
		reminders:    s.Reminders(),
		medications:  s.Medications(),
		reports:      s.Reports(),
	}
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	codec, err := jwt.NewCodec(opts.Auth.JWTSecret, opts.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	engine, err := authz.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("authz engine: %w", err)
	}

	st := newStores(opts.DB)

	// Services por módulo
	usersSvc := users.NewService(st.users, codec, opts.Auth.BcryptCost)
	petsSvc := pets.NewService(st.pets, usersSvc)
	appointmentsSvc := appointments.NewService(st.appointments)
	recordsSvc := medicalrecords.NewService(st.records)
	remindersSvc := reminders.NewService(st.reminders)
	medicationsSvc := medications.NewService(st.medications)
	reportsSvc := reports.NewService(st.reports, petsSvc, usersSvc)

	// Cadena de propiedad: dependiente -> pet -> usuario.
	resolver := authz.NewResolver(opts.StoreTimeout, log)
	resolver.Register(authz.ResourceUser, usersSvc.OwnerLink)
	resolver.Register(authz.ResourcePet, petsSvc.OwnerLink)
	resolver.Register(authz.ResourceAppointment, appointmentsSvc.ParentLink)
	resolver.Register(authz.ResourceMedicalRecord, recordsSvc.ParentLink)
	resolver.Register(authz.ResourceReminder, remindersSvc.ParentLink)
	resolver.Register(authz.ResourceMedication, medicationsSvc.ParentLink)

	az := authz.NewAuthorizer(engine, resolver)

	coord := authz.NewCoordinator(authz.CoordinatorOptions{
		Tx: st.tx,
		Dependents: []authz.Dependent{
			{Resource: authz.ResourceAppointment, Store: st.appointments},
			{Resource: authz.ResourceMedicalRecord, Store: st.records},
			{Resource: authz.ResourceReminder, Store: st.reminders},
			{Resource: authz.ResourceMedication, Store: st.medications},
		},
		Pets:    st.pets,
		Users:   st.users,
		Timeout: opts.StoreTimeout,
		Logger:  log,
	})

	if err := bootstrapAdmin(usersSvc, opts.Auth, log); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Rutas públicas de sesión, con rate limit por IP.
	r.Group(func(pub chi.Router) {
		if opts.Security.RateLimitRequests > 0 && opts.Security.RateLimitWindow > 0 {
			pub.Use(httprate.LimitByIP(opts.Security.RateLimitRequests, opts.Security.RateLimitWindow))
		}
		users.RegisterAuthRoutes(pub, usersSvc)
	})

	// Todo lo demás requiere bearer token.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Authenticate(codec))

		users.RegisterRoutes(pr, usersSvc, az, coord)
		pets.RegisterRoutes(pr, petsSvc, az, coord)
		appointments.RegisterRoutes(pr, appointmentsSvc, az)
		medicalrecords.RegisterRoutes(pr, recordsSvc, az)
		reminders.RegisterRoutes(pr, remindersSvc, az)
		medications.RegisterRoutes(pr, medicationsSvc, az)
		reports.RegisterRoutes(pr, reportsSvc, az)
	})

	return r, nil
}

func bootstrapAdmin(svc *users.Service, cfg config.AuthConfig, log logger.Logger) error {
	if cfg.AdminUsername == "" {
		return nil
	}
	if cfg.AdminPassword == "" {
		return errors.New("bootstrap admin: password required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("bootstrap admin created", map[string]any{"username": cfg.AdminUsername})
	}
	return nil
}
