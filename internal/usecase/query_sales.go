package usecase

import (
	"context"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func paginate(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

type SalePage struct {
	Data       []entity.Transaction `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// SaleQueries is the read side: single lookups and filtered listings over
// the transaction log. No invariants beyond read consistency.
type SaleQueries struct {
	sales SaleReader
}

func NewSaleQueries(sales SaleReader) *SaleQueries {
	return &SaleQueries{sales: sales}
}

func (q *SaleQueries) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return q.sales.GetByID(ctx, id)
}

func (q *SaleQueries) List(ctx context.Context, f SaleFilter) (*SalePage, error) {
	f.Page, f.Limit = normalizePaging(f.Page, f.Limit)
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return nil, invalid("endDate is before startDate")
	}

	data, total, err := q.sales.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []entity.Transaction{}
	}
	return &SalePage{Data: data, Pagination: paginate(f.Page, f.Limit, total)}, nil
}
