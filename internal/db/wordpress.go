package db

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"leadcapture/formbridge/internal/logging"
)

// InitWordPress connects to the host site's MySQL database. An empty DSN
// means no WordPress site is attached and returns nil without error.
func InitWordPress(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		logging.Info("WP_DB_DSN not set, form imports are disabled")
		return nil, nil
	}

	var (
		wp  *sqlx.DB
		err error
	)
	for i := 0; i < 5; i++ {
		wp, err = sqlx.Connect("mysql", dsn)
		if err == nil {
			wp.SetMaxOpenConns(5)
			wp.SetConnMaxLifetime(5 * time.Minute)
			logging.Info("Connected to WordPress database")
			return wp, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to wordpress db: %w", err)
}
