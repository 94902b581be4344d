package domain

import "time"

// Review is one completed product-review conversation. ID and CreatedAt are
// assigned when the store accepts it.
type Review struct {
	ID            int64
	ContactNumber string
	ProductName   string
	UserName      string
	ReviewText    string
	CreatedAt     time.Time
}
