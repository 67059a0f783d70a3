package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	var desc, barcode sql.NullString
	err := row.Scan(&p.ID, &p.Name, &desc, &barcode, &p.PriceCents, &p.CostCents,
		&p.Stock, &p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.Description = desc.String
	p.Barcode = barcode.String
	return &p, nil
}

const productColumns = `id, name, description, barcode, price_cents, cost_cents, stock, category_id, is_active, created_at, updated_at`

func (r *MySQLProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
}

func (r *MySQLProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = ?`, barcode))
}

func (r *MySQLProductRepo) List(ctx context.Context, f usecase.ProductFilter) ([]entity.Product, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *f.IsActive)
	} else {
		where = append(where, "is_active = TRUE")
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR barcode LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+cond+`
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`, append(args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *MySQLProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (id, name, description, barcode, price_cents, cost_cents, stock, category_id, is_active, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, nullable(p.Description), nullable(p.Barcode), p.PriceCents, p.CostCents,
		p.Stock, p.CategoryID, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *MySQLProductRepo) Update(ctx context.Context, p *entity.Product) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET name = ?, description = ?, barcode = ?, price_cents = ?, cost_cents = ?, stock = ?, category_id = ?, is_active = ?, updated_at = ?
WHERE id = ?`,
		p.Name, nullable(p.Description), nullable(p.Barcode), p.PriceCents, p.CostCents,
		p.Stock, p.CategoryID, p.IsActive, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ usecase.ProductRepo = (*MySQLProductRepo)(nil)
