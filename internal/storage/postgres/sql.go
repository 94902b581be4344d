package postgres

// created_at is stored without time zone and
// always written in UTC.
const createReviewsSQL = `
CREATE TABLE IF NOT EXISTS reviews (
  id             SERIAL PRIMARY KEY,
  contact_number TEXT,
  product_name   TEXT,
  user_name      TEXT,
  product_review TEXT,
  created_at     TIMESTAMP DEFAULT NOW()
)`

const createReviewsIndexSQL = `CREATE INDEX IF NOT EXISTS reviews_created_at_idx ON reviews (created_at DESC, id DESC)`

const insertReviewSQL = `
INSERT INTO reviews (contact_number, product_name, user_name, product_review, created_at)
VALUES ($1, $2, $3, $4, COALESCE($5, NOW() AT TIME ZONE 'utc'))
RETURNING id, created_at`

const listReviewsSQL = `
SELECT id, contact_number, product_name, user_name, product_review, created_at
FROM reviews
ORDER BY created_at DESC, id DESC`
