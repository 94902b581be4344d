package mysql

const createReviewsSQL = `
CREATE TABLE IF NOT EXISTS reviews (
  id             BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  contact_number TEXT,
  product_name   TEXT,
  user_name      TEXT,
  product_review TEXT,
  created_at     TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
  KEY idx_reviews_created (created_at, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// COALESCE lets callers leave the timestamp to the server.
const insertReviewSQL = `
INSERT INTO reviews (contact_number, product_name, user_name, product_review, created_at)
VALUES (?, ?, ?, ?, COALESCE(?, UTC_TIMESTAMP(6)))`

const selectReviewSQL = `
SELECT created_at FROM reviews WHERE id = ?`

// Newest first; served by idx_reviews_created.
const listReviewsSQL = `
SELECT id, contact_number, product_name, user_name, product_review, created_at
FROM reviews
ORDER BY created_at DESC, id DESC`
