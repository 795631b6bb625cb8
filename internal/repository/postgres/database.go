package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Connect opens the database connection, configures the pool, and verifies
// connectivity. Connection attempts are retried with exponential backoff so
// the bot can start before the database finishes coming up.
func Connect(ctx context.Context, dsn string, maxConns int, log zerolog.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB

	op := func() error {
		var err error
		db, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			log.Warn().Err(err).Msg("database not ready, retrying")
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	log.Info().Int("pool_open", maxConns).Msg("db connected")

	return db, nil
}
