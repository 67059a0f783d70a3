package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

const mysqlErrDuplicateEntry = 1062

type MySQLSaleStore struct{ db *sql.DB }

func NewMySQLSaleStore(db *sql.DB) *MySQLSaleStore { return &MySQLSaleStore{db: db} }

// WithinSale wraps fn in a single database transaction. Rollback on any
// error or panic, including context cancellation mid-flight; MySQL then
// discards the header, items and every stock decrement together.
func (s *MySQLSaleStore) WithinSale(ctx context.Context, fn func(tx usecase.SaleTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sale tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&mysqlSaleTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sale tx: %w", err)
	}
	return nil
}

type mysqlSaleTx struct{ tx *sql.Tx }

func (t *mysqlSaleTx) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return scanProduct(t.tx.QueryRowContext(ctx, `
SELECT id, name, description, barcode, price_cents, cost_cents, stock, category_id, is_active, created_at, updated_at
FROM products WHERE id = ?`, id))
}

// LastInvoiceNumber does a locking read so two sales in the same instant
// serialize on the day's tail invoice. The unique index on invoice_number
// is the backstop when the lock does not cover a fresh day prefix.
func (t *mysqlSaleTx) LastInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	var last string
	err := t.tx.QueryRowContext(ctx, `
SELECT invoice_number FROM transactions
WHERE invoice_number LIKE CONCAT(?, '-%')
ORDER BY invoice_number DESC
LIMIT 1
FOR UPDATE`, prefix).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last invoice for %s: %w", prefix, err)
	}
	return last, nil
}

func (t *mysqlSaleTx) InsertTransaction(ctx context.Context, tr *entity.Transaction) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO transactions (id, invoice_number, user_id, total_cents, payment_method, payment_cents, change_cents, created_at)
VALUES (?,?,?,?,?,?,?,?)`,
		tr.ID, tr.InvoiceNumber, tr.UserID, tr.TotalCents, string(tr.PaymentMethod),
		tr.PaymentCents, tr.ChangeCents, tr.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return fmt.Errorf("invoice %s: %w", tr.InvoiceNumber, usecase.ErrInvoiceConflict)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	for _, it := range tr.Items {
		_, err := t.tx.ExecContext(ctx, `
INSERT INTO transaction_items (id, transaction_id, product_id, product_name, quantity, unit_price_cents, subtotal_cents)
VALUES (?,?,?,?,?,?,?)`,
			it.ID, it.TransactionID, it.ProductID, it.ProductName, it.Quantity,
			it.UnitPriceCents, it.SubtotalCents)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

// DecrementStock only succeeds when enough stock remains at write time.
// rows == 0 means a concurrent sale consumed the stock after this
// transaction's validation read.
func (t *mysqlSaleTx) DecrementStock(ctx context.Context, productID string, qty int) (int, error) {
	res, err := t.tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ?, updated_at = NOW()
WHERE id = ? AND stock >= ?`, qty, productID, qty)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		var name string
		var available int
		err := t.tx.QueryRowContext(ctx,
			`SELECT name, stock FROM products WHERE id = ?`, productID).Scan(&name, &available)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &usecase.ProductNotFoundError{ProductID: productID}
		}
		if err != nil {
			return 0, err
		}
		return 0, &usecase.InsufficientStockError{
			ProductID: productID, Name: name, Available: available, Requested: qty,
		}
	}

	var remaining int
	if err := t.tx.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id = ?`, productID).Scan(&remaining); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (s *MySQLSaleStore) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	tr := &entity.Transaction{}
	var method string
	err := s.db.QueryRowContext(ctx, `
SELECT id, invoice_number, user_id, total_cents, payment_method, payment_cents, change_cents, created_at
FROM transactions WHERE id = ?`, id).Scan(
		&tr.ID, &tr.InvoiceNumber, &tr.UserID, &tr.TotalCents, &method,
		&tr.PaymentCents, &tr.ChangeCents, &tr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	tr.PaymentMethod = entity.PaymentMethod(method)

	items, err := s.itemsFor(ctx, []string{tr.ID})
	if err != nil {
		return nil, err
	}
	tr.Items = items[tr.ID]
	return tr, nil
}

func (s *MySQLSaleStore) List(ctx context.Context, f usecase.SaleFilter) ([]entity.Transaction, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.PaymentMethod != "" {
		where = append(where, "payment_method = ?")
		args = append(args, string(f.PaymentMethod))
	}
	if f.StartDate != nil {
		where = append(where, "created_at >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		where = append(where, "created_at <= ?")
		args = append(args, *f.EndDate)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	q := `
SELECT id, invoice_number, user_id, total_cents, payment_method, payment_cents, change_cents, created_at
FROM transactions WHERE ` + cond + `
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, append(args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []entity.Transaction
	var ids []string
	for rows.Next() {
		var tr entity.Transaction
		var method string
		if err := rows.Scan(&tr.ID, &tr.InvoiceNumber, &tr.UserID, &tr.TotalCents, &method,
			&tr.PaymentCents, &tr.ChangeCents, &tr.CreatedAt); err != nil {
			return nil, 0, err
		}
		tr.PaymentMethod = entity.PaymentMethod(method)
		out = append(out, tr)
		ids = append(ids, tr.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := s.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, total, nil
}

func (s *MySQLSaleStore) itemsFor(ctx context.Context, txIDs []string) (map[string][]entity.TransactionItem, error) {
	out := make(map[string][]entity.TransactionItem, len(txIDs))
	if len(txIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(txIDs))
	for i, id := range txIDs {
		args[i] = id
	}
	q := `
SELECT id, transaction_id, product_id, product_name, quantity, unit_price_cents, subtotal_cents
FROM transaction_items
WHERE transaction_id IN (?` + strings.Repeat(",?", len(txIDs)-1) + `)
ORDER BY transaction_id, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		out[it.TransactionID] = append(out[it.TransactionID], it)
	}
	return out, rows.Err()
}

// Stats projections.

func (s *MySQLSaleStore) SalesTotals(ctx context.Context, start, end time.Time) (usecase.SalesTotals, error) {
	var t usecase.SalesTotals
	err := s.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(total_cents), 0), COUNT(*)
FROM transactions WHERE created_at >= ? AND created_at <= ?`, start, end).
		Scan(&t.TotalSalesCents, &t.TotalTransactions)
	if err != nil {
		return usecase.SalesTotals{}, fmt.Errorf("sales totals: %w", err)
	}
	return t, nil
}

func (s *MySQLSaleStore) ProductPerformance(ctx context.Context, start, end time.Time, limit int) ([]usecase.ProductSales, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT ti.product_id, ti.product_name,
       SUM(ti.quantity), SUM(ti.subtotal_cents),
       SUM(ti.subtotal_cents) - COALESCE(MAX(p.cost_cents), 0) * SUM(ti.quantity)
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
LEFT JOIN products p ON p.id = ti.product_id
WHERE t.created_at >= ? AND t.created_at <= ?
GROUP BY ti.product_id, ti.product_name
ORDER BY SUM(ti.subtotal_cents) DESC
LIMIT ?`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("product performance: %w", err)
	}
	defer rows.Close()

	var out []usecase.ProductSales
	for rows.Next() {
		var ps usecase.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.TotalQuantity,
			&ps.TotalSalesCents, &ps.TotalProfitCents); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

var (
	_ usecase.SaleStore   = (*MySQLSaleStore)(nil)
	_ usecase.SaleReader  = (*MySQLSaleStore)(nil)
	_ usecase.StatsReader = (*MySQLSaleStore)(nil)
)
