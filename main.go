package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/solhaug/tribescore/internal/adapters/cache"
	"github.com/solhaug/tribescore/internal/adapters/database"
	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/adapters/triberepository"
	"github.com/solhaug/tribescore/internal/app"
	"github.com/solhaug/tribescore/internal/config"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/logging"
	"github.com/solhaug/tribescore/internal/ports"
	"github.com/solhaug/tribescore/internal/reporting"
	"github.com/solhaug/tribescore/internal/telemetry"
)

// TODO: Put in config
const PROD_DOMAIN_SUFFIX = "tribescore.app"
const STAGING_DOMAIN_SUFFIX = "tribescore-staging.pages.dev"

const SERVICE_NAME = "tribescore"

func main() {
	// Local overrides for development. A missing .env file is fine.
	_ = godotenv.Load()

	instanceID := uuid.New().String()
	logger := slog.New(
		logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil)),
	).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	ctx := context.Background()
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, SERVICE_NAME)
	if err != nil {
		fail("Failed to initialize OpenTelemetry", "error", err.Error())
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	logger.Info("Initializing database connection")
	db, err := database.NewPostgresDatabaseFromConfig(config)
	if err != nil {
		fail("Failed to initialize database connection", "error", err.Error())
	}
	logger.Info("Initialized database connection")

	repositorySchemaName := database.GetSchemaName(!config.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, repositorySchemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	sessionRepo := sessionrepository.NewPostgres(db, repositorySchemaName)
	tribeRepo := triberepository.NewPostgres(db, repositorySchemaName)
	logger.Info("Initialized repositories")

	// Leaderboards are recomputed from all of the tribe's rows, so keep a
	// short cache in front to absorb bursts.
	leaderboardCache := cache.NewTTLCache[[]domain.TribeMember](30 * time.Second)

	allowedOrigins, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX, STAGING_DOMAIN_SUFFIX)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	recordSession := app.BuildRecordSession(sessionRepo)
	getTribeLeaderboard := app.BuildGetTribeLeaderboard(leaderboardCache, tribeRepo, sessionRepo)
	getTribeSessions := app.BuildGetTribeSessions(sessionRepo)
	getTopOpponents := app.BuildGetTopOpponents(sessionRepo)
	getTopGames := app.BuildGetTopGames(sessionRepo)

	http.HandleFunc(
		"OPTIONS /v1/sessions",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/sessions",
		ports.MakeRecordSessionHandler(
			recordSession,
			allowedOrigins,
			logger.With("port", "recordsession"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/tribes/{tribe}/leaderboard",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/tribes/{tribe}/leaderboard",
		ports.MakeGetTribeLeaderboardHandler(
			getTribeLeaderboard,
			allowedOrigins,
			logger.With("port", "leaderboard"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/tribes/{tribe}/sessions",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/tribes/{tribe}/sessions",
		ports.MakeGetTribeSessionsHandler(
			getTribeSessions,
			allowedOrigins,
			logger.With("port", "tribesessions"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/players/{profile}/opponents",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/players/{profile}/opponents",
		ports.MakeGetTopOpponentsHandler(
			getTopOpponents,
			allowedOrigins,
			logger.With("port", "topopponents"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/players/{profile}/games",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/players/{profile}/games",
		ports.MakeGetTopGamesHandler(
			getTopGames,
			allowedOrigins,
			logger.With("port", "topgames"),
			sentryMiddleware,
		),
	)

	logger.Info("Init complete")
	err = http.ListenAndServe(fmt.Sprintf(":%s", config.Port()), nil)
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
