package usecase

import (
	"context"
	"time"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

// SaleTx is the view of the store inside one atomic unit of work. Every
// read observes the state as of this transaction, so validation and the
// stock decrements see the same point-in-time stock.
type SaleTx interface {
	// GetProduct returns (nil, nil) when the product does not exist.
	GetProduct(ctx context.Context, id string) (*entity.Product, error)

	// LastInvoiceNumber returns the highest invoice number starting with
	// prefix, or "" if none exists. The adapter must hold the read stable
	// for the rest of the transaction (locking read) or rely on the
	// unique index to reject a lost race.
	LastInvoiceNumber(ctx context.Context, prefix string) (string, error)

	// InsertTransaction persists the header and all items. A unique-key
	// violation on the invoice number is returned as ErrInvoiceConflict.
	InsertTransaction(ctx context.Context, t *entity.Transaction) error

	// DecrementStock conditionally subtracts qty and returns the remaining
	// stock. It fails with *InsufficientStockError when the current stock
	// is below qty at write time.
	DecrementStock(ctx context.Context, productID string, qty int) (int, error)
}

// SaleStore runs fn inside one atomic unit of work: commit if fn returns
// nil, roll back everything otherwise (including on ctx cancellation).
type SaleStore interface {
	WithinSale(ctx context.Context, fn func(tx SaleTx) error) error
}

type SaleFilter struct {
	Page          int
	Limit         int
	StartDate     *time.Time           // inclusive
	EndDate       *time.Time           // inclusive
	PaymentMethod entity.PaymentMethod // empty = all
	UserID        string               // empty = all
}

type SaleReader interface {
	// GetByID returns ErrTransactionNotFound when absent.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, f SaleFilter) ([]entity.Transaction, int64, error)
}

type ProductFilter struct {
	Page       int
	Limit      int
	Search     string // matches name or barcode
	CategoryID string
	IsActive   *bool // nil = active only (listing default)
}

type ProductRepo interface {
	// GetByID returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]entity.Product, int64, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
}

type CategoryRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
	Delete(ctx context.Context, id string) error
	CountProducts(ctx context.Context, id string) (int64, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
}

// IdempotencyStore guards against double submission of the same sale.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// SaleRecordedMsg is published after a sale commits.
type SaleRecordedMsg struct {
	TransactionID string    `json:"transactionId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	UserID        string    `json:"userId"`
	TotalCents    int64     `json:"total"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SaleEvents interface {
	PublishRecorded(ctx context.Context, msg SaleRecordedMsg) error
}

type SalesTotals struct {
	TotalSalesCents   int64 `json:"totalSales"`
	TotalTransactions int64 `json:"totalTransactions"`
}

type ProductSales struct {
	ProductID        string `json:"productId"`
	ProductName      string `json:"productName"`
	TotalQuantity    int64  `json:"totalQuantity"`
	TotalSalesCents  int64  `json:"totalSales"`
	TotalProfitCents int64  `json:"totalProfit"`
}

type StatsReader interface {
	SalesTotals(ctx context.Context, start, end time.Time) (SalesTotals, error)
	ProductPerformance(ctx context.Context, start, end time.Time, limit int) ([]ProductSales, error)
}
