package entity

import "time"

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentDebit   PaymentMethod = "DEBIT"
	PaymentCredit  PaymentMethod = "CREDIT"
	PaymentEwallet PaymentMethod = "EWALLET"
)

// ParsePaymentMethod reports whether s names one of the supported methods.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentEwallet:
		return PaymentMethod(s), true
	}
	return "", false
}

// CartLine is a caller-supplied line item. It is never persisted directly;
// the sale validator expands it into a TransactionItem with a price snapshot.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Transaction is a committed sale. Immutable once written: the system is
// append-only for sales, corrections are handled outside it.
type Transaction struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoiceNumber"`
	UserID        string            `json:"userId"`
	TotalCents    int64             `json:"total"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	PaymentCents  int64             `json:"paymentAmount"`
	ChangeCents   int64             `json:"changeAmount"`
	CreatedAt     time.Time         `json:"createdAt"`
	Items         []TransactionItem `json:"items"`
}

// TransactionItem is created atomically with its parent transaction.
// UnitPriceCents is the product price captured at sale time, independent
// of later catalog edits. ProductName is denormalized for display.
type TransactionItem struct {
	ID             string `json:"id"`
	TransactionID  string `json:"transactionId"`
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPrice"`
	SubtotalCents  int64  `json:"subtotal"`
}
