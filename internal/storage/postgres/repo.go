package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"whatsapp_reviews/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open opens a pooled connection and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
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
	for _, stmt := range []string{createReviewsSQL, createReviewsIndexSQL} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repo) Insert(ctx context.Context, rv *domain.Review) error {
	var created any
	if !rv.CreatedAt.IsZero() {
		created = rv.CreatedAt.UTC()
	}
	err := r.db.QueryRowContext(ctx, insertReviewSQL,
		rv.ContactNumber,
		rv.ProductName,
		rv.UserName,
		rv.ReviewText,
		created,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert review: %w", err)
	}
	rv.CreatedAt = rv.CreatedAt.UTC()
	return nil
}

func (r *Repo) List(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: list reviews: %w", err)
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var contact, product, user, text sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&rv.ID, &contact, &product, &user, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scan review: %w", err)
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
		return nil, fmt.Errorf("postgres: list reviews: %w", err)
	}
	return out, nil
}
