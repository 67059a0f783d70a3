package usecase

import (
	"context"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

type productGetter interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
}

// validateCart checks every line against current catalog state and expands
// the cart into transaction items with snapshot prices. Lines are checked
// in input order and the first violation wins. Duplicate productIds are
// intentionally NOT merged: each line is validated on its own, matching
// the cart as displayed to the cashier.
//
// Pure over the given store view: no writes. Callers that need the check
// to hold through the write must pass the SaleTx of the same unit of work.
func validateCart(ctx context.Context, pg productGetter, lines []entity.CartLine, paymentCents int64) ([]entity.TransactionItem, int64, error) {
	items := make([]entity.TransactionItem, 0, len(lines))
	var total int64

	for _, line := range lines {
		p, err := pg.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if p == nil {
			return nil, 0, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if !p.IsActive {
			return nil, 0, &ProductInactiveError{ProductID: p.ID, Name: p.Name}
		}
		if p.Stock < line.Quantity {
			return nil, 0, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.Stock,
				Requested: line.Quantity,
			}
		}

		subtotal := p.PriceCents * int64(line.Quantity)
		total += subtotal
		items = append(items, entity.TransactionItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: p.PriceCents,
			SubtotalCents:  subtotal,
		})
	}

	if paymentCents < total {
		return nil, 0, &InsufficientPaymentError{TotalCents: total, PaidCents: paymentCents}
	}
	return items, total, nil
}
