package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zsbati/exam-service/internal/app"
	"github.com/zsbati/exam-service/internal/config"
	"github.com/zsbati/exam-service/internal/database"
	"github.com/zsbati/exam-service/internal/models"
	"github.com/zsbati/exam-service/internal/repository"
	"github.com/zsbati/exam-service/internal/service"
	"github.com/zsbati/exam-service/pkg/logger"
)

func main() {
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrateDirection := migrateCmd.String("direction", "up", "direction of migration (up/down)")

	superuserCmd := flag.NewFlagSet("provision-superuser", flag.ExitOnError)
	superuserUsername := superuserCmd.String("username", "", "superuser username")
	superuserEmail := superuserCmd.String("email", "", "superuser email")
	superuserName := superuserCmd.String("name", "", "superuser display name")

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			migrateCmd.Parse(os.Args[2:])
			runMigrations(*migrateDirection)
			return
		case "provision-superuser":
			superuserCmd.Parse(os.Args[2:])
			provisionSuperuser(*superuserUsername, *superuserEmail, *superuserName)
			return
		}
	}

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}

	log.Info().Msg("Database connection established")

	application, err := app.New(cfg, log, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run application")
		}
	}()

	log.Info().Msgf("Exam Service started on %s", cfg.Server.Address)

	<-ctx.Done()
	log.Info().Msg("Shutting down Exam Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}

	log.Info().Msg("Exam Service stopped")
}

func runMigrations(direction string) {
	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	migrator := database.NewMigrator(cfg.Database)

	switch direction {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Migrations rolled back successfully")
	default:
		log.Fatal().Msg("Invalid migration direction. Use 'up' or 'down'")
	}
}

// provisionSuperuser creates the first administrative account directly,
// bypassing the HTTP role gate that otherwise requires an existing superuser.
func provisionSuperuser(username, email, name string) {
	log := logger.New()

	if username == "" || email == "" || name == "" {
		log.Fatal().Msg("Flags -username, -email and -name are all required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db, log)
	teacherRepo := repository.NewTeacherRepository(db, log)
	studentRepo := repository.NewStudentRepository(db, log)
	accounts := service.NewAccountService(accountRepo, teacherRepo, studentRepo, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, err := accounts.ProvisionSuperuser(ctx, &models.ProvisionSuperuserRequest{
		Username: username,
		Email:    email,
		Name:     name,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to provision superuser")
	}

	log.Info().Str("account_id", account.ID).Msg("Superuser provisioned successfully")
}
