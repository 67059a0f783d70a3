package entity

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product holds catalog state. Price and cost are integer cents.
// Stock is mutated only by committed sales; catalog edits (price, name)
// never touch historical transaction items because prices are snapshotted
// at sale time.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Barcode     string    `json:"barcode,omitempty"`
	PriceCents  int64     `json:"price"`
	CostCents   int64     `json:"cost"`
	Stock       int       `json:"stock"`
	CategoryID  string    `json:"categoryId"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
