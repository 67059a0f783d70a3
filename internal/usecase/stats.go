package usecase

import (
	"context"
	"time"
)

const defaultTopProducts = 10

// Stats exposes read-only projections over the transaction log.
type Stats struct {
	stats StatsReader
}

func NewStats(stats StatsReader) *Stats {
	return &Stats{stats: stats}
}

func (uc *Stats) SalesTotals(ctx context.Context, start, end time.Time) (SalesTotals, error) {
	if end.Before(start) {
		return SalesTotals{}, invalid("endDate is before startDate")
	}
	return uc.stats.SalesTotals(ctx, start, end)
}

func (uc *Stats) ProductPerformance(ctx context.Context, start, end time.Time, limit int) ([]ProductSales, error) {
	if end.Before(start) {
		return nil, invalid("endDate is before startDate")
	}
	if limit < 1 {
		limit = defaultTopProducts
	}
	rows, err := uc.stats.ProductPerformance(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []ProductSales{}
	}
	return rows, nil
}
