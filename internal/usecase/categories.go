package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

type Categories struct {
	categories CategoryRepo
	now        func() time.Time
}

func NewCategories(categories CategoryRepo) *Categories {
	return &Categories{categories: categories, now: time.Now}
}

func (uc *Categories) Create(ctx context.Context, name, description string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	existing, err := uc.categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid("category %q already exists", name)
	}

	c := &entity.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *Categories) Update(ctx context.Context, id, name, description string) (*entity.Category, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		if other, err := uc.categories.GetByName(ctx, name); err != nil {
			return nil, err
		} else if other != nil && other.ID != id {
			return nil, invalid("category %q already exists", name)
		}
		c.Name = name
	}
	if description != "" {
		c.Description = description
	}
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete refuses while products still reference the category.
func (uc *Categories) Delete(ctx context.Context, id string) error {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}
	n, err := uc.categories.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	return uc.categories.Delete(ctx, id)
}

func (uc *Categories) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (uc *Categories) List(ctx context.Context) ([]entity.Category, error) {
	return uc.categories.List(ctx)
}
