package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/config"
	"github.com/rushigund/Techligenc-website-backend/internal/contentindex"
	"github.com/rushigund/Techligenc-website-backend/internal/database"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/queue"
)

func main() {
	log.Println("resyncing job listings into the content index")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config %v", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	conn, err := database.GetDbConn(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)
	ctx := context.Background()
	if err := database.Migrate(ctx, conn); err != nil {
		log.Fatalf("unable to migrate database: %v", err)
	}

	var publisher queue.Publisher
	if cfg.IndexBackend == config.IndexBackendAMQP {
		broker, err := queue.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("unable to connect to rabbitmq: %v", err)
		}
		defer broker.Close()
		if err := broker.Declare(cfg.IndexQueue); err != nil {
			log.Fatalf("unable to declare %s: %v", cfg.IndexQueue, err)
		}
		publisher = broker
	}
	index, closeIndex, err := contentindex.Open(cfg, conn, publisher)
	if err != nil {
		log.Fatalf("unable to open %s index: %v", cfg.IndexBackend, err)
	}
	defer closeIndex()

	svc := listing.NewService(
		listing.NewRepository(conn),
		contentindex.NewSynchronizer(index, cfg.SyncTimeout, logger),
		nil,
		logger,
	)
	n, err := svc.Resync(ctx)
	log.Printf("resynced %d listings into %s index\n", n, cfg.IndexBackend)
	if err != nil {
		// deferred closes are skipped by log.Fatal
		closeIndex()
		database.CloseDbConn(conn)
		log.Fatalf("some listings failed to sync: %v", err)
	}
}
