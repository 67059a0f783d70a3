package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/configs"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/cache"
	apihttp "github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/http"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/http/middleware"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/repo"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/security"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

type testEnv struct {
	router *gin.Engine
	store  *repo.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "kasir-api"
	cfg.Security.Audience = "kasir-clients"
	cfg.Security.TTL = time.Hour

	store := repo.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := apihttp.Handlers{
		Auth: apihttp.NewAuthHandler(usecase.NewAuth(store.Users()), cfg),
		Sales: apihttp.NewSaleHandler(
			usecase.NewCreateSale(store, store, cache.NewMemoryIdempotencyStore(), nil, log),
			usecase.NewSaleQueries(store),
		),
		Products:   apihttp.NewProductHandler(usecase.NewProducts(store.Products(), store.Categories())),
		Categories: apihttp.NewCategoryHandler(usecase.NewCategories(store.Categories())),
		Stats:      apihttp.NewStatsHandler(usecase.NewStats(store)),
	}
	router := apihttp.NewRouter(h, middleware.NewAuthz(cfg), log)
	return &testEnv{router: router, store: store}
}

// seedUser writes a user straight into the store so the first admin does not
// need the admin-only register endpoint.
func (e *testEnv) seedUser(t *testing.T, email, password string, role entity.Role) *entity.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{
		ID:           "user-" + email,
		Name:         email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination json.RawMessage `json:"pagination"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any, headers ...map[string]string) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, hs := range headers {
		for k, v := range hs {
			req.Header.Set(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	}
	return rec.Code, env
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, "login: %s", env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

// seedCatalog creates a category and product through the API and returns
// their ids.
func (e *testEnv) seedCatalog(t *testing.T, admin string, stock int) (categoryID, productID string) {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/categories", admin, gin.H{"name": "Minuman"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var cat entity.Category
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	code, env = e.do(t, http.MethodPost, "/api/products", admin, gin.H{
		"name": "Kopi Sachet", "price": 1500, "cost": 900, "stock": stock, "categoryId": cat.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var p entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return cat.ID, p.ID
}

func TestLoginAndMe(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	token := e.login(t, "admin@example.com", "admin-pass")

	code, env := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	var u entity.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "admin@example.com", u.Email)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	code, _ = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/api/transactions", "/api/products", "/api/categories", "/api/auth/me"} {
		code, _ := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}

	// garbage token is rejected too
	code, _ := e.do(t, http.MethodGet, "/api/transactions", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "kasir@example.com", "kasir-pass", entity.RoleCashier)
	cashier := e.login(t, "kasir@example.com", "kasir-pass")

	code, _ := e.do(t, http.MethodPost, "/api/categories", cashier, gin.H{"name": "Makanan"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(t, http.MethodPost, "/api/products", cashier, gin.H{
		"name": "X", "price": 100, "stock": 1, "categoryId": "cat",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(t, http.MethodGet, "/api/statistics/sales", cashier, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/register", cashier, gin.H{
		"name": "B", "email": "b@x.c", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRegisterByAdmin(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")

	code, env := e.do(t, http.MethodPost, "/api/auth/register", admin, gin.H{
		"name": "Kasir Baru", "email": "kasir@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	// the new cashier can log in right away
	e.login(t, "kasir@example.com", "secret1")

	code, _ = e.do(t, http.MethodPost, "/api/auth/register", admin, gin.H{
		"name": "Dup", "email": "kasir@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSaleLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")
	_, productID := e.seedCatalog(t, admin, 10)

	code, env := e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"paymentMethod": "CASH",
		"paymentAmount": 5000,
		"items":         []gin.H{{"productId": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var sale entity.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Regexp(t, `^INV-\d{8}-\d{4}$`, sale.InvoiceNumber)
	assert.Equal(t, int64(3000), sale.TotalCents)
	assert.Equal(t, int64(2000), sale.ChangeCents)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Kopi Sachet", sale.Items[0].ProductName)

	// stock visible through the catalog went down
	code, env = e.do(t, http.MethodGet, "/api/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 8, p.Stock)

	// and the transaction is readable by id
	code, env = e.do(t, http.MethodGet, "/api/transactions/"+sale.ID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	var got entity.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, sale.InvoiceNumber, got.InvoiceNumber)
}

func TestSaleFailureStatuses(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")
	_, productID := e.seedCatalog(t, admin, 1)

	// more than in stock
	code, env := e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"paymentMethod": "CASH",
		"paymentAmount": 5000,
		"items":         []gin.H{{"productId": productID, "quantity": 3}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "insufficient stock")
	assert.Contains(t, env.Message, "available: 1")

	// underpayment
	code, env = e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"paymentMethod": "CASH",
		"paymentAmount": 1000,
		"items":         []gin.H{{"productId": productID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "insufficient payment")

	// unknown product
	code, _ = e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"paymentMethod": "CASH",
		"paymentAmount": 1000,
		"items":         []gin.H{{"productId": "ghost", "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, code)

	// malformed body
	code, _ = e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"paymentMethod": "CASH",
		"paymentAmount": 1000,
		"items":         []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// nothing committed along the way
	code, env = e.do(t, http.MethodGet, "/api/transactions", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var pg struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Pagination, &pg))
	assert.Equal(t, int64(0), pg.Total)
}

func TestSaleIdempotencyHeader(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")
	_, productID := e.seedCatalog(t, admin, 5)

	body := gin.H{
		"paymentMethod": "CASH",
		"paymentAmount": 3000,
		"items":         []gin.H{{"productId": productID, "quantity": 2}},
	}
	key := map[string]string{"X-Idempotency-Key": "reg-7-0001"}

	code, env := e.do(t, http.MethodPost, "/api/transactions", admin, body, key)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var first entity.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &first))

	code, env = e.do(t, http.MethodPost, "/api/transactions", admin, body, key)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var second entity.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &second))

	assert.Equal(t, first.ID, second.ID)

	code, env = e.do(t, http.MethodGet, "/api/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 3, p.Stock, "replay must not decrement twice")
}

func TestTransactionListFiltersAndPagination(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")
	_, productID := e.seedCatalog(t, admin, 20)

	for i := 0; i < 3; i++ {
		method := "CASH"
		if i == 2 {
			method = "DEBIT"
		}
		code, env := e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
			"paymentMethod": method,
			"paymentAmount": 1500,
			"items":         []gin.H{{"productId": productID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, code, env.Message)
	}

	code, env := e.do(t, http.MethodGet, "/api/transactions?page=1&limit=2", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var pg usecase.Pagination
	require.NoError(t, json.Unmarshal(env.Pagination, &pg))
	assert.Equal(t, usecase.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, pg)

	code, env = e.do(t, http.MethodGet, "/api/transactions?paymentMethod=DEBIT", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Pagination, &pg))
	assert.Equal(t, int64(1), pg.Total)

	code, _ = e.do(t, http.MethodGet, "/api/transactions?paymentMethod=BARTER", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodGet, "/api/transactions?startDate=2026-13-40", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodGet, "/api/transactions/no-such-id", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCategoryAndProductLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")
	categoryID, productID := e.seedCatalog(t, admin, 5)

	// category with products cannot be deleted
	code, env := e.do(t, http.MethodDelete, "/api/categories/"+categoryID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "category")

	// product soft delete: gone from the default listing, still readable
	code, _ = e.do(t, http.MethodDelete, "/api/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = e.do(t, http.MethodGet, "/api/products", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var products []entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Empty(t, products)

	code, env = e.do(t, http.MethodGet, "/api/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.False(t, p.IsActive)

	// partial update
	code, env = e.do(t, http.MethodPut, "/api/products/"+productID, admin, gin.H{"price": 2000, "isActive": true})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, int64(2000), p.PriceCents)
	assert.True(t, p.IsActive)
}

func TestStatisticsEndpoints(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "admin@example.com", "admin-pass", entity.RoleAdmin)
	admin := e.login(t, "admin@example.com", "admin-pass")
	_, productID := e.seedCatalog(t, admin, 10)

	for i := 0; i < 2; i++ {
		code, env := e.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
			"paymentMethod": "CASH",
			"paymentAmount": 3000,
			"items":         []gin.H{{"productId": productID, "quantity": 2}},
		})
		require.Equal(t, http.StatusCreated, code, env.Message)
	}

	code, env := e.do(t, http.MethodGet, "/api/statistics/sales", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var totals usecase.SalesTotals
	require.NoError(t, json.Unmarshal(env.Data, &totals))
	assert.Equal(t, int64(2), totals.TotalTransactions)
	assert.Equal(t, int64(6000), totals.TotalSalesCents)

	code, env = e.do(t, http.MethodGet, "/api/statistics/products", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var rows []usecase.ProductSales
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].TotalQuantity)
	assert.Equal(t, int64(6000), rows[0].TotalSalesCents)
	assert.Equal(t, int64(2400), rows[0].TotalProfitCents)
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
