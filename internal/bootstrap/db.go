package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/config"
	"github.com/folio-labs/portfolio-api/internal/storage/postgres"
)

// Database holds the pool and the database/sql handle built on top of it.
type Database struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// OpenDB connects to Postgres and applies the schema when AutoMigrate is set.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db := postgres.NewConnection(pool)

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			pool.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		logger.Info("database schema applied")
	}

	logger.Info("database connected", zap.String("target", postgres.Describe(cfg.DSN)))
	return &Database{Pool: pool, DB: db}, nil
}

func (d *Database) Close() {
	_ = d.DB.Close()
	d.Pool.Close()
}
