package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

// invoiceRetryLimit bounds how often a lost invoice-number race is retried
// before it surfaces as ErrInvoiceConflict.
const invoiceRetryLimit = 3

type CreateSaleInput struct {
	UserID         string
	PaymentMethod  entity.PaymentMethod
	PaymentCents   int64
	Items          []entity.CartLine
	IdempotencyKey string // optional, from X-Idempotency-Key
}

func (in CreateSaleInput) validate() error {
	if in.UserID == "" {
		return invalid("userId is required")
	}
	if _, ok := entity.ParsePaymentMethod(string(in.PaymentMethod)); !ok {
		return invalid("unknown payment method %q", in.PaymentMethod)
	}
	if in.PaymentCents <= 0 {
		return invalid("paymentAmount must be positive")
	}
	if len(in.Items) == 0 {
		return invalid("at least one item is required")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return invalid("items[%d].productId is required", i)
		}
		if it.Quantity <= 0 {
			return invalid("items[%d].quantity must be positive", i)
		}
	}
	return nil
}

// CreateSale turns a cart into a durable, uniquely numbered transaction.
// All writes happen inside one unit of work: the header, the items and
// every stock decrement commit together or not at all.
type CreateSale struct {
	store  SaleStore
	sales  SaleReader
	idem   IdempotencyStore // optional
	events SaleEvents       // optional
	log    *slog.Logger
	now    func() time.Time
}

func NewCreateSale(store SaleStore, sales SaleReader, idem IdempotencyStore, events SaleEvents, log *slog.Logger) *CreateSale {
	return &CreateSale{store: store, sales: sales, idem: idem, events: events, log: log, now: time.Now}
}

func (uc *CreateSale) Execute(ctx context.Context, in CreateSaleInput) (*entity.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	// Fast path: the same operator already submitted this exact sale.
	if uc.idem != nil && in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey); ok {
			return uc.sales.GetByID(ctx, id)
		}
		ok, err := uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	var sale *entity.Transaction
	var err error
	for attempt := 1; ; attempt++ {
		sale, err = uc.recordOnce(ctx, in)
		if err == nil || !errors.Is(err, ErrInvoiceConflict) {
			break
		}
		if attempt >= invoiceRetryLimit {
			uc.log.Error("invoice sequence conflict persists", "attempts", attempt, "user_id", in.UserID)
			break
		}
		uc.log.Warn("invoice sequence conflict, retrying", "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	if uc.idem != nil && in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, sale.ID)
	}
	if uc.events != nil {
		msg := SaleRecordedMsg{
			TransactionID: sale.ID,
			InvoiceNumber: sale.InvoiceNumber,
			UserID:        sale.UserID,
			TotalCents:    sale.TotalCents,
			CreatedAt:     sale.CreatedAt,
		}
		// Advisory only; the committed row is the source of truth.
		if err := uc.events.PublishRecorded(ctx, msg); err != nil {
			uc.log.Error("publish sale.recorded failed", "invoice", sale.InvoiceNumber, "err", err)
		}
	}
	return sale, nil
}

// recordOnce runs one attempt of the atomic unit of work:
// re-validate against the tx view, allocate the invoice number, insert
// header+items, then conditionally decrement stock per line. Any failure
// aborts the whole transaction, leaving no partial writes.
func (uc *CreateSale) recordOnce(ctx context.Context, in CreateSaleInput) (*entity.Transaction, error) {
	var sale *entity.Transaction
	err := uc.store.WithinSale(ctx, func(tx SaleTx) error {
		items, total, err := validateCart(ctx, tx, in.Items, in.PaymentCents)
		if err != nil {
			return err
		}

		now := uc.now().UTC()
		prefix := invoicePrefix(now)
		last, err := tx.LastInvoiceNumber(ctx, prefix)
		if err != nil {
			return err
		}

		t := &entity.Transaction{
			ID:            uuid.NewString(),
			InvoiceNumber: nextInvoiceNumber(prefix, last),
			UserID:        in.UserID,
			TotalCents:    total,
			PaymentMethod: in.PaymentMethod,
			PaymentCents:  in.PaymentCents,
			ChangeCents:   in.PaymentCents - total,
			CreatedAt:     now,
		}
		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].TransactionID = t.ID
		}
		t.Items = items

		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		// Conditional decrements close the race against concurrent sales
		// that consumed stock after the validation read.
		for _, it := range items {
			if _, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		sale = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
