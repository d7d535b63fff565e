package catalog

import "time"

type Product struct {
	ID       string
	SKU      string
	Slug     string
	Name     string
	Price    int64
	Currency string
	Color    string
	ImageURL string
	Status   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
