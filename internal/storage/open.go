// Package storage selects the relational ReviewStore for a configured driver.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"whatsapp_reviews/internal/domain"
	"whatsapp_reviews/internal/shared"
	"whatsapp_reviews/internal/storage/mysql"
	"whatsapp_reviews/internal/storage/postgres"
)

// Store is a ReviewStore that can create its own schema.
type Store interface {
	domain.ReviewStore
	EnsureSchema(ctx context.Context) error
}

// Open connects to dsn with the named driver. The caller closes the returned
// *sql.DB.
func Open(ctx context.Context, driver, dsn string) (Store, *sql.DB, error) {
	switch driver {
	case shared.DriverPostgres:
		db, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.New(db), db, nil
	case shared.DriverMySQL:
		db, err := mysql.Open(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		return mysql.New(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}
