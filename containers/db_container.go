package containers

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image      = "postgres:16.3-alpine"
	dbName     = "badminton_elo"
	dbUser     = "elo"
	dbPassword = "secret"
)

// DBContainer is a throwaway postgres used by integration tests.
type DBContainer struct {
	container *postgres.PostgresContainer
	DB        *sql.DB
}

// NewDBContainer starts postgres, connects and applies the schema.
func NewDBContainer() *DBContainer {
	ctx := context.Background()

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		log.Fatalf("error starting container: %v", err)
	}

	c := &DBContainer{container: container}

	c.DB, err = db.Connect(c.ConnectionString(), 10*time.Second)
	if err != nil {
		c.Shutdown()
		log.Fatalf("error connecting to container: %v", err)
	}
	if err := db.Migrate(ctx, c.DB); err != nil {
		c.Shutdown()
		log.Fatalf("error applying schema: %v", err)
	}
	return c
}

// Reset empties every table and restarts the id sequences.
func (c *DBContainer) Reset() error {
	_, err := c.DB.Exec(`TRUNCATE match_participants, matches, users RESTART IDENTITY CASCADE`)
	return err
}

func (c *DBContainer) Shutdown() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if err := c.container.Terminate(context.Background()); err != nil {
		log.Fatalf("error terminating container: %v", err)
	}
}

func (c *DBContainer) ConnectionString() string {
	// explicitly set sslmode=disable because the container is not configured to use TLS
	connStr, err := c.container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		log.Fatalf("error getting connection string: %v", err)
	}
	return connStr
}
