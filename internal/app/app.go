package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/config"
	"github.com/zsbati/exam-service/internal/delivery/httpd"
	"github.com/zsbati/exam-service/internal/repository"
	"github.com/zsbati/exam-service/internal/service"
	"github.com/zsbati/exam-service/internal/service/integration"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
	db     *sql.DB
	events integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	events, err := integration.NewEventPublisher(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.SubmittedKey,
		cfg.RabbitMQ.ScoreRecordedKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ publisher, continuing without events")
		events = nil
	}

	accountRepo := repository.NewAccountRepository(db, log)
	teacherRepo := repository.NewTeacherRepository(db, log)
	studentRepo := repository.NewStudentRepository(db, log)
	examRepo := repository.NewExamRepository(db, log)
	questionRepo := repository.NewQuestionRepository(db, log)
	answerRepo := repository.NewAnswerRepository(db, log)
	resultRepo := repository.NewResultRepository(db, log)
	ledgerRepo := repository.NewLedgerRepository(db, log)

	accountService := service.NewAccountService(accountRepo, teacherRepo, studentRepo, log)
	catalogService := service.NewCatalogService(examRepo, questionRepo, studentRepo, teacherRepo, log)
	submissionService := service.NewSubmissionService(
		answerRepo,
		resultRepo,
		ledgerRepo,
		questionRepo,
		examRepo,
		studentRepo,
		teacherRepo,
		events,
		log,
	)

	handler := httpd.NewHandler(
		catalogService,
		submissionService,
		accountService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		config: cfg,
		db:     db,
		events: events,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting exam service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down exam service...")

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return a.server.Shutdown(ctx)
}
