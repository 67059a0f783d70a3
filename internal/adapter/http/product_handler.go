package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type ProductHandler struct {
	products *usecase.Products
}

func NewProductHandler(products *usecase.Products) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Barcode     string `json:"barcode"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	Cost        int64  `json:"cost" binding:"gte=0"`
	Stock       int    `json:"stock" binding:"gte=0"`
	CategoryID  string `json:"categoryId" binding:"required"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.products.Create(ctx, usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		PriceCents:  req.Price,
		CostCents:   req.Cost,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "product created", p)
}

type updateProductReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Barcode     *string `json:"barcode"`
	Price       *int64  `json:"price"`
	Cost        *int64  `json:"cost"`
	Stock       *int    `json:"stock"`
	CategoryID  *string `json:"categoryId"`
	IsActive    *bool   `json:"isActive"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.products.Update(ctx, c.Param("id"), usecase.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		PriceCents:  req.Price,
		CostCents:   req.Cost,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product updated", p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product deactivated", nil)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product", p)
}

func (h *ProductHandler) List(c *gin.Context) {
	f := usecase.ProductFilter{
		Page:       intQuery(c, "page", 0),
		Limit:      intQuery(c, "limit", 0),
		Search:     c.Query("search"),
		CategoryID: c.Query("categoryId"),
	}
	if v := c.Query("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respond(c, http.StatusBadRequest, "isActive must be a boolean", nil)
			return
		}
		f.IsActive = &b
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	page, err := h.products.List(ctx, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "products",
		"data":       page.Data,
		"pagination": page.Pagination,
	})
}
