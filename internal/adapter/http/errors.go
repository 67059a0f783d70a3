package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/logging"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

// respond mirrors the envelope every endpoint uses.
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": status < http.StatusBadRequest, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError translates domain errors into status classes in one place.
// Expected domain failures are returned to the caller as-is; only
// unexpected faults are logged as incidents.
func respondError(c *gin.Context, err error) {
	var (
		ve     *usecase.ValidationError
		pnf    *usecase.ProductNotFoundError
		inact  *usecase.ProductInactiveError
		stock  *usecase.InsufficientStockError
		payerr *usecase.InsufficientPaymentError
	)

	switch {
	case errors.As(err, &ve),
		errors.As(err, &inact),
		errors.As(err, &stock),
		errors.As(err, &payerr),
		errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrBarcodeTaken),
		errors.Is(err, usecase.ErrCategoryInUse):
		respond(c, http.StatusBadRequest, err.Error(), nil)

	case errors.As(err, &pnf),
		errors.Is(err, usecase.ErrTransactionNotFound),
		errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, usecase.ErrCategoryNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		respond(c, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, err.Error(), nil)

	case errors.Is(err, usecase.ErrAccountInactive):
		respond(c, http.StatusForbidden, err.Error(), nil)

	case errors.Is(err, usecase.ErrDuplicateRequest):
		respond(c, http.StatusConflict, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvoiceConflict):
		// Retries exhausted under heavy contention. Safe for the caller
		// to retry: nothing was committed.
		respond(c, http.StatusServiceUnavailable, "could not allocate invoice number, please retry", nil)

	default:
		logging.From(c).Error("unhandled error", "err", err)
		respond(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
