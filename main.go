package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/application"
	"github.com/rushigund/Techligenc-website-backend/internal/authoriser"
	"github.com/rushigund/Techligenc-website-backend/internal/config"
	"github.com/rushigund/Techligenc-website-backend/internal/contentindex"
	"github.com/rushigund/Techligenc-website-backend/internal/database"
	"github.com/rushigund/Techligenc-website-backend/internal/email"
	"github.com/rushigund/Techligenc-website-backend/internal/handler"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/notion"
	"github.com/rushigund/Techligenc-website-backend/internal/queue"
	"github.com/rushigund/Techligenc-website-backend/internal/server"
	"github.com/rushigund/Techligenc-website-backend/internal/template"
	"github.com/rushigund/Techligenc-website-backend/internal/upload"
)

func newLogger(env string) zerolog.Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}
	logger := newLogger(cfg.Env)

	conn, err := database.GetDbConn(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer database.CloseDbConn(conn)
	if err := database.Migrate(context.Background(), conn); err != nil {
		logger.Fatal().Err(err).Msg("unable to migrate database")
	}

	intake, err := upload.NewIntake(cfg.UploadDir, cfg.MaxUploadBytes, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to set up upload intake")
	}
	if err := intake.EnsureDir(); err != nil {
		logger.Fatal().Err(err).Str("dir", intake.Dir()).Msg("unable to prepare upload directory")
	}

	var publisher queue.Publisher
	if cfg.NeedsAMQP() {
		broker, err := queue.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to connect to rabbitmq")
		}
		defer broker.Close()
		for _, q := range cfg.AMQPQueues() {
			if err := broker.Declare(q); err != nil {
				logger.Fatal().Err(err).Str("queue", q).Msg("unable to declare queue")
			}
		}
		publisher = broker
	}

	index, closeIndex, err := contentindex.Open(cfg, conn, publisher)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.IndexBackend).Msg("unable to open content index")
	}
	defer closeIndex()

	svr := server.NewServer(cfg, mux.NewRouter(), logger)

	// a nil *bigcache.BigCache must not end up inside the interface
	var cache listing.Cache
	if c := svr.Cache(); c != nil {
		cache = c
	}
	listings := listing.NewService(
		listing.NewRepository(conn),
		contentindex.NewSynchronizer(index, cfg.SyncTimeout, logger),
		cache,
		logger,
	)

	sink, err := buildSinks(cfg, logger, publisher)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to set up application sinks")
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(authoriser.DefaultTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Env != "dev",
		SameSite: http.SameSiteLaxMode,
	}
	auth := authoriser.NewAuthoriser(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JwtSigningKey, sessionStore, cfg.SiteHost)

	handler.RegisterRoutes(svr, handler.Deps{
		Listings: listings,
		Intake:   intake,
		Pipeline: application.NewPipeline(sink, logger),
		Auth:     auth,
		DB:       conn,
	})

	logger.Info().
		Str("index", cfg.IndexBackend).
		Strs("sinks", cfg.ApplicationSinks).
		Str("uploads", intake.Dir()).
		Msg("starting server")
	if err := svr.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func buildSinks(cfg config.Config, logger zerolog.Logger, publisher queue.Publisher) (application.Sink, error) {
	var sinks application.Sinks
	for _, name := range cfg.ApplicationSinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, application.NewLogSink(logger))
		case config.SinkEmail:
			client, err := email.NewClient(cfg.EmailAPIKey, cfg.HREmail, cfg.NoReplyEmail, cfg.SiteName)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, application.NewEmailSink(client, template.NewTemplate(), cfg.HREmail))
		case config.SinkNotion:
			sinks = append(sinks, notion.NewSink(cfg.NotionToken, cfg.NotionDatabaseID, &http.Client{Timeout: 15 * time.Second}))
		case config.SinkAMQP:
			sinks = append(sinks, application.NewQueueSink(publisher, cfg.ApplicationQueue))
		}
	}
	return sinks, nil
}
