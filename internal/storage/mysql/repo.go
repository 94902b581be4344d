package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"whatsapp_reviews/internal/domain"
)

func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// normalizeDSN forces parseTime so created_at scans into time.Time, and reads
// timestamps as UTC unless the DSN names a location.
func normalizeDSN(dsn string) (*gomysql.Config, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg, nil
}

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	conn, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(conn)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReviewsSQL); err != nil {
		return fmt.Errorf("mysql: ensure schema: %w", err)
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, rv *domain.Review) error {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ContactNumber,
		rv.ProductName,
		rv.UserName,
		rv.ReviewText,
		valTime(rv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("mysql: insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("mysql: insert review: %w", err)
	}
	rv.ID = id

	if rv.CreatedAt.IsZero() {
		// server assigned the timestamp; read it back
		var created time.Time
		if err := r.db.QueryRowContext(ctx, selectReviewSQL, id).Scan(&created); err != nil {
			return fmt.Errorf("mysql: read created_at: %w", err)
		}
		rv.CreatedAt = created
	}
	rv.CreatedAt = rv.CreatedAt.UTC()
	return nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, fmt.Errorf("mysql: list reviews: %w", err)
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var (
			contact   sql.NullString
			product   sql.NullString
			user      sql.NullString
			text      sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&rv.ID, &contact, &product, &user, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("mysql: scan review: %w", err)
		}
		rv.ContactNumber = contact.String
		rv.ProductName = product.String
		rv.UserName = user.String
		rv.ReviewText = text.String
		if createdAt.Valid {
			rv.CreatedAt = createdAt.Time.UTC()
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: list reviews: %w", err)
	}
	return out, nil
}
