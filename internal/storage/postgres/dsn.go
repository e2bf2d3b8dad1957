package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Describe renders dsn as host:port/database for logs, leaving out
// credentials. An unparsable dsn renders as "invalid dsn".
func Describe(dsn string) string {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "invalid dsn"
	}
	return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
}
