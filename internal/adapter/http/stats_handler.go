package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type StatsHandler struct {
	stats *usecase.Stats
}

func NewStatsHandler(stats *usecase.Stats) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// statsRange defaults to the current day when no range is given.
func statsRange(c *gin.Context) (time.Time, time.Time, error) {
	start, end, err := dateRange(c)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start == nil || end == nil {
		now := time.Now().UTC()
		sod := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		eod := sod.Add(24*time.Hour - time.Nanosecond)
		return sod, eod, nil
	}
	return *start, *end, nil
}

// Sales handles GET /api/statistics/sales.
func (h *StatsHandler) Sales(c *gin.Context) {
	start, end, err := statsRange(c)
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	totals, err := h.stats.SalesTotals(ctx, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "sales statistics", totals)
}

// Products handles GET /api/statistics/products.
func (h *StatsHandler) Products(c *gin.Context) {
	start, end, err := statsRange(c)
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.stats.ProductPerformance(ctx, start, end, intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product performance", rows)
}
