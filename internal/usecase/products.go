package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

type ProductPage struct {
	Data       []entity.Product `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// Products covers catalog maintenance. Stock set here is a catalog edit;
// it never runs inside a sale's unit of work.
type Products struct {
	products   ProductRepo
	categories CategoryRepo
	now        func() time.Time
}

func NewProducts(products ProductRepo, categories CategoryRepo) *Products {
	return &Products{products: products, categories: categories, now: time.Now}
}

type CreateProductInput struct {
	Name        string
	Description string
	Barcode     string
	PriceCents  int64
	CostCents   int64
	Stock       int
	CategoryID  string
}

func (uc *Products) Create(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if in.PriceCents <= 0 {
		return nil, invalid("price must be positive")
	}
	if in.CostCents < 0 || in.Stock < 0 {
		return nil, invalid("cost and stock must not be negative")
	}
	if in.CategoryID == "" {
		return nil, invalid("categoryId is required")
	}

	cat, err := uc.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	if in.Barcode != "" {
		existing, err := uc.products.GetByBarcode(ctx, in.Barcode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrBarcodeTaken
		}
	}

	now := uc.now().UTC()
	p := &entity.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Barcode:     in.Barcode,
		PriceCents:  in.PriceCents,
		CostCents:   in.CostCents,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Barcode     *string
	PriceCents  *int64
	CostCents   *int64
	Stock       *int
	CategoryID  *string
	IsActive    *bool
}

func (uc *Products) Update(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalid("name must not be empty")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Barcode != nil && *in.Barcode != p.Barcode {
		if *in.Barcode != "" {
			existing, err := uc.products.GetByBarcode(ctx, *in.Barcode)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != id {
				return nil, ErrBarcodeTaken
			}
		}
		p.Barcode = *in.Barcode
	}
	if in.PriceCents != nil {
		if *in.PriceCents <= 0 {
			return nil, invalid("price must be positive")
		}
		p.PriceCents = *in.PriceCents
	}
	if in.CostCents != nil {
		if *in.CostCents < 0 {
			return nil, invalid("cost must not be negative")
		}
		p.CostCents = *in.CostCents
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, invalid("stock must not be negative")
		}
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		cat, err := uc.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrCategoryNotFound
		}
		p.CategoryID = *in.CategoryID
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	p.UpdatedAt = uc.now().UTC()
	if err := uc.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete is a soft delete: the product is deactivated so historical
// transaction items keep a valid reference.
func (uc *Products) Delete(ctx context.Context, id string) error {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	p.IsActive = false
	p.UpdatedAt = uc.now().UTC()
	return uc.products.Update(ctx, p)
}

func (uc *Products) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (uc *Products) List(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	f.Page, f.Limit = normalizePaging(f.Page, f.Limit)
	data, total, err := uc.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []entity.Product{}
	}
	return &ProductPage{Data: data, Pagination: paginate(f.Page, f.Limit, total)}, nil
}
