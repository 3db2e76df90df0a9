package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"comandero/internal/config"
)

// Connect opens the shared order database. The order system owns the schema;
// this service only reads the order graph and flips comanda print flags, so
// there are no migrations here. Startup retries because the service usually
// boots alongside the restaurant network.
func Connect(ctx context.Context, cfg config.OrderDBConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	const (
		maxRetries = 10
		retryDelay = 2 * time.Second
		pingTTL    = 5 * time.Second
	)

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := sql.Open("pgx", dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = conn.PingContext(pctx)
			cancel()
			if err == nil {
				conn.SetMaxOpenConns(4)
				conn.SetMaxIdleConns(2)
				conn.SetConnMaxLifetime(30 * time.Minute)
				return conn, nil
			}
			_ = conn.Close()
		}
		lastErr = err

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("order db connect canceled: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("order db unreachable after %d attempts: %w", maxRetries, lastErr)
}
