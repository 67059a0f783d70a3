package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type MySQLCategoryRepo struct{ db *sql.DB }

func NewMySQLCategoryRepo(db *sql.DB) *MySQLCategoryRepo { return &MySQLCategoryRepo{db: db} }

func scanCategory(row rowScanner) (*entity.Category, error) {
	var c entity.Category
	var desc sql.NullString
	err := row.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	c.Description = desc.String
	return &c, nil
}

func (r *MySQLCategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM categories WHERE id = ?`, id))
}

func (r *MySQLCategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM categories WHERE name = ?`, name))
}

func (r *MySQLCategoryRepo) List(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *MySQLCategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (id, name, description, created_at) VALUES (?,?,?,?)`,
		c.ID, c.Name, nullable(c.Description), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *MySQLCategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		c.Name, nullable(c.Description), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *MySQLCategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrCategoryNotFound
	}
	return nil
}

func (r *MySQLCategoryRepo) CountProducts(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}
	return n, nil
}

var _ usecase.CategoryRepo = (*MySQLCategoryRepo)(nil)
