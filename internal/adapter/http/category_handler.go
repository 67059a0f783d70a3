package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type CategoryHandler struct {
	categories *usecase.Categories
}

func NewCategoryHandler(categories *usecase.Categories) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	cat, err := h.categories.Create(ctx, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "category created", cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	cat, err := h.categories.Update(ctx, c.Param("id"), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category updated", cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.categories.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category deleted", nil)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cat, err := h.categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category", cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cats, err := h.categories.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "categories", cats)
}
