package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/http/middleware"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type SaleHandler struct {
	create  *usecase.CreateSale
	queries *usecase.SaleQueries
}

func NewSaleHandler(create *usecase.CreateSale, queries *usecase.SaleQueries) *SaleHandler {
	return &SaleHandler{create: create, queries: queries}
}

type createSaleReq struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	PaymentAmount int64  `json:"paymentAmount" binding:"required,gt=0"`
	Items         []struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1,dive"`
}

// CreateSale handles POST /api/transactions.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req createSaleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	lines := make([]entity.CartLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = entity.CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	sale, err := h.create.Execute(ctx, usecase.CreateSaleInput{
		UserID:         middleware.CurrentUserID(c),
		PaymentMethod:  entity.PaymentMethod(req.PaymentMethod),
		PaymentCents:   req.PaymentAmount,
		Items:          lines,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.ObserveSale(sale.TotalCents)
	respond(c, http.StatusCreated, "transaction created", sale)
}

// GetByID handles GET /api/transactions/:id.
func (h *SaleHandler) GetByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sale, err := h.queries.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transaction", sale)
}

// List handles GET /api/transactions.
func (h *SaleHandler) List(c *gin.Context) {
	f := usecase.SaleFilter{
		Page:   intQuery(c, "page", 0),
		Limit:  intQuery(c, "limit", 0),
		UserID: c.Query("userId"),
	}
	if pm := c.Query("paymentMethod"); pm != "" {
		method, ok := entity.ParsePaymentMethod(pm)
		if !ok {
			respond(c, http.StatusBadRequest, "unknown payment method", nil)
			return
		}
		f.PaymentMethod = method
	}
	start, end, err := dateRange(c)
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	f.StartDate, f.EndDate = start, end

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	page, err := h.queries.List(ctx, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "transactions",
		"data":       page.Data,
		"pagination": page.Pagination,
	})
}
