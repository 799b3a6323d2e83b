package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"leadcapture/formbridge/internal/logging"
)

const (
	connectAttempts = 10
	connectBackoff  = 500 * time.Millisecond
)

// InitPostgres opens the sqlx pool behind the health probe and the stats
// query. Postgres may still be starting under compose, so connect is retried.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var pg *sqlx.DB
		pg, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			pg.SetMaxOpenConns(10)
			pg.SetMaxIdleConns(2)
			pg.SetConnMaxIdleTime(time.Minute)
			return pg, nil
		}
		logging.Debug("Postgres not ready", "attempt", attempt, "error", err)
		time.Sleep(connectBackoff)
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", connectAttempts, err)
}
