// Package database opens and verifies the MariaDB and Redis connections
// and applies schema migrations at startup. Connections are created once
// in main and handed to the rest of the app; this package owns their
// lifecycle, nothing else opens one.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the "mysql" driver with database/sql.
	_ "github.com/go-sql-driver/mysql"

	"github.com/printhaus/postershelf/internal/config"
)

// NewMariaDB opens a MariaDB pool and waits until the server answers a
// ping. Under Docker Compose the database container is usually still
// initializing when the app starts, so the ping retries with growing
// backoff instead of failing the whole boot on the first refusal.
func NewMariaDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	const maxAttempts = 10
	wait := 1 * time.Second
	var pingErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = db.PingContext(ctx)
		cancel()

		if pingErr == nil {
			return db, nil
		}
		if attempt == maxAttempts {
			break
		}

		slog.Warn("mariadb unreachable, waiting to retry",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", pingErr),
		)
		time.Sleep(wait)
		wait = min(wait*2, 30*time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("mariadb did not become reachable after %d attempts: %w", maxAttempts, pingErr)
}
