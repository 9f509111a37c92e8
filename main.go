package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"datalens/adapters/postgres"
	"datalens/internal/auth"
	"datalens/internal/config"
	"datalens/internal/dataset"
	"datalens/internal/errors"
	"datalens/internal/migration"
	"datalens/ui"
)

// initDatabase connects to PostgreSQL and applies the schema
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := migration.Run(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	storage, err := dataset.NewLocalFileStorage(cfg.Upload)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	authService := auth.NewService(
		postgres.NewUserRepository(db),
		postgres.NewSessionRepository(db),
		cfg.Auth.SessionTTL,
	)
	datasetService := dataset.NewService(postgres.NewDatasetRepository(db), storage)

	server := ui.NewServer(cfg, authService, datasetService)

	var group errgroup.Group
	group.Go(func() error {
		addr := ":" + cfg.Server.Port
		log.Printf("[Server] listening on %s", addr)
		return server.Run(addr)
	})
	if cfg.Profiling.Enabled {
		group.Go(func() error {
			addr := "localhost:" + cfg.Profiling.Port
			log.Printf("[Server] pprof listening on %s", addr)
			return http.ListenAndServe(addr, nil)
		})
	}

	if err := group.Wait(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
