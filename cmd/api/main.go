// @title Pet Clinic API
// @version 1.0
// @description Historia clínica, turnos y recordatorios de mascotas con control de acceso por rol y propiedad.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <token>
package main

//go:generate swag init -d ../.. -g cmd/api/main.go -o ../../internal/docs

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	pg "pet-clinic-api/internal/adapters/storage/postgres"
	"pet-clinic-api/internal/config"
	"pet-clinic-api/internal/platform/logger"
	"pet-clinic-api/internal/platform/telemetry"
	"pet-clinic-api/internal/router"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// .env es opcional
	_ = godotenv.Load()

	boot := logger.NewFromEnv()

	cfg, err := config.Load()
	if err != nil {
		boot.Error("invalid configuration", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.ParseFormat(cfg.Logging.Format),
		App:    cfg.Logging.App,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
	}, log)

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = pg.Open(ctx, cfg.Database.DSN)
		if err != nil {
			log.Error("database unavailable", map[string]any{"err": err})
			os.Exit(1)
		}
		defer db.Close()

		if cfg.Database.Migrate {
			if err := pg.Migrate(ctx, db); err != nil {
				log.Error("migration failed", map[string]any{"err": err})
				os.Exit(1)
			}
		}
		log.Info("using postgres store", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory store", nil)
	}

	h, err := router.NewRouter(router.Options{
		Auth:         cfg.Auth,
		Security:     cfg.Security,
		StoreTimeout: cfg.Database.StoreTimeout,
		DB:           db,
		Logger:       log,
	})
	if err != nil {
		log.Error("router setup failed", map[string]any{"err": err})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      otelhttp.NewHandler(h, cfg.Logging.App),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"err": err})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]any{"err": err})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown failed", map[string]any{"err": err})
	}
}
