package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/cache"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/repo"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedProduct(t *testing.T, store *repo.MemoryStore, id string, priceCents int64, stock int, active bool) {
	t.Helper()
	now := time.Now().UTC()
	err := store.CreateProduct(context.Background(), &entity.Product{
		ID: id, Name: "Product " + id, PriceCents: priceCents, Stock: stock,
		CategoryID: "cat-1", IsActive: active, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
}

func newCreateSale(store *repo.MemoryStore) *usecase.CreateSale {
	return usecase.NewCreateSale(store, store, nil, nil, testLogger())
}

func stockOf(t *testing.T, store *repo.MemoryStore, id string) int {
	t.Helper()
	p, err := store.GetProductByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func countSales(t *testing.T, store *repo.MemoryStore) int64 {
	t.Helper()
	_, total, err := store.List(context.Background(), usecase.SaleFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	return total
}

// Selling the whole stock with exact payment leaves stock 0 and change 0.
func TestCreateSaleExactPayment(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	uc := newCreateSale(store)

	sale, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  5000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5000), sale.TotalCents)
	assert.Equal(t, int64(0), sale.ChangeCents)
	assert.Equal(t, 0, stockOf(t, store, "p1"))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, int64(1000), sale.Items[0].UnitPriceCents)
	assert.Equal(t, int64(5000), sale.Items[0].SubtotalCents)
}

// Selling from empty stock fails and writes nothing.
func TestCreateSaleOutOfStock(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 0, true)
	uc := newCreateSale(store)

	_, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  1000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 1}},
	})

	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockOf(t, store, "p1"))
	assert.Equal(t, int64(0), countSales(t, store))
}

// Paying less than the total fails before any write.
func TestCreateSaleInsufficientPayment(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 7000, 3, true)
	uc := newCreateSale(store)

	_, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentDebit,
		PaymentCents:  5000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 1}},
	})

	var payErr *usecase.InsufficientPaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, int64(7000), payErr.TotalCents)
	assert.Equal(t, int64(5000), payErr.PaidCents)
	assert.Equal(t, 3, stockOf(t, store, "p1"))
	assert.Equal(t, int64(0), countSales(t, store))
}

// Two concurrent sales of 3 against stock 5: exactly one commits, the
// loser gets InsufficientStock, stock ends at 2.
func TestCreateSaleConcurrentLastUnits(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	uc := newCreateSale(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), usecase.CreateSaleInput{
				UserID:        "op-1",
				PaymentMethod: entity.PaymentCash,
				PaymentCents:  3000,
				Items:         []entity.CartLine{{ProductID: "p1", Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		failed++
		var stockErr *usecase.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, stockOf(t, store, "p1"))
	assert.Equal(t, int64(1), countSales(t, store))
}

// Sequential sales on the same day get consecutive invoice numbers.
func TestCreateSaleInvoiceSequence(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 10, true)
	uc := newCreateSale(store)

	in := usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  1000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 1}},
	}
	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	prefix := "INV-" + time.Now().UTC().Format("20060102")
	assert.Equal(t, prefix+"-0001", first.InvoiceNumber)
	assert.Equal(t, prefix+"-0002", second.InvoiceNumber)
}

func TestCreateSaleDuplicateLinesConsumeStockTogether(t *testing.T) {
	// Two lines of 3 against stock 5 pass per-line validation but the
	// second conditional decrement must abort the whole sale.
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	uc := newCreateSale(store)

	_, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  6000,
		Items: []entity.CartLine{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p1", Quantity: 3},
		},
	})

	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockOf(t, store, "p1"), "failed sale must not leave partial decrements")
	assert.Equal(t, int64(0), countSales(t, store))
}

func TestCreateSaleRejectsBadInput(t *testing.T) {
	store := repo.NewMemoryStore()
	uc := newCreateSale(store)
	ctx := context.Background()

	cases := []usecase.CreateSaleInput{
		{UserID: "op-1", PaymentMethod: "BARTER", PaymentCents: 100, Items: []entity.CartLine{{ProductID: "p", Quantity: 1}}},
		{UserID: "op-1", PaymentMethod: entity.PaymentCash, PaymentCents: 0, Items: []entity.CartLine{{ProductID: "p", Quantity: 1}}},
		{UserID: "op-1", PaymentMethod: entity.PaymentCash, PaymentCents: 100},
		{UserID: "op-1", PaymentMethod: entity.PaymentCash, PaymentCents: 100, Items: []entity.CartLine{{ProductID: "p", Quantity: 0}}},
		{PaymentMethod: entity.PaymentCash, PaymentCents: 100, Items: []entity.CartLine{{ProductID: "p", Quantity: 1}}},
	}
	for _, in := range cases {
		_, err := uc.Execute(ctx, in)
		var ve *usecase.ValidationError
		assert.ErrorAs(t, err, &ve, "input %+v", in)
	}
	assert.Equal(t, int64(0), countSales(t, store))
}

func TestCreateSaleSnapshotPriceSurvivesCatalogEdit(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 10, true)
	uc := newCreateSale(store)

	sale, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentEwallet,
		PaymentCents:  2000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	// raise the price and deactivate the product afterwards
	p, err := store.GetProductByID(context.Background(), "p1")
	require.NoError(t, err)
	p.PriceCents = 9999
	p.IsActive = false
	require.NoError(t, store.UpdateProduct(context.Background(), p))

	got, err := store.GetByID(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Items[0].UnitPriceCents)
	assert.Equal(t, int64(2000), got.TotalCents)
}

func TestCreateSaleIdempotentReplay(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	idem := cache.NewMemoryIdempotencyStore()
	uc := usecase.NewCreateSale(store, store, idem, nil, testLogger())

	in := usecase.CreateSaleInput{
		UserID:         "op-1",
		PaymentMethod:  entity.PaymentCash,
		PaymentCents:   2000,
		Items:          []entity.CartLine{{ProductID: "p1", Quantity: 2}},
		IdempotencyKey: "req-abc",
	}

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, stockOf(t, store, "p1"), "replay must not decrement twice")
	assert.Equal(t, int64(1), countSales(t, store))
}

// conflictStore makes the first n inserts lose the invoice race.
type conflictStore struct {
	inner     usecase.SaleStore
	mu        sync.Mutex
	remaining int
}

type conflictTx struct {
	usecase.SaleTx
	s *conflictStore
}

func (s *conflictStore) WithinSale(ctx context.Context, fn func(tx usecase.SaleTx) error) error {
	return s.inner.WithinSale(ctx, func(tx usecase.SaleTx) error {
		return fn(&conflictTx{SaleTx: tx, s: s})
	})
}

func (t *conflictTx) InsertTransaction(ctx context.Context, tr *entity.Transaction) error {
	t.s.mu.Lock()
	lose := t.s.remaining > 0
	if lose {
		t.s.remaining--
	}
	t.s.mu.Unlock()
	if lose {
		return usecase.ErrInvoiceConflict
	}
	return t.SaleTx.InsertTransaction(ctx, tr)
}

func TestCreateSaleRetriesInvoiceConflict(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	cs := &conflictStore{inner: store, remaining: 2}
	uc := usecase.NewCreateSale(cs, store, nil, nil, testLogger())

	sale, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  1000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err, "two lost races fit inside the retry limit")
	assert.NotEmpty(t, sale.InvoiceNumber)
	assert.Equal(t, 4, stockOf(t, store, "p1"))
}

func TestCreateSaleSurfacesPersistentConflict(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	cs := &conflictStore{inner: store, remaining: 100}
	uc := usecase.NewCreateSale(cs, store, nil, nil, testLogger())

	_, err := uc.Execute(context.Background(), usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  1000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.ErrorIs(t, err, usecase.ErrInvoiceConflict)
	assert.Equal(t, 5, stockOf(t, store, "p1"), "failed attempts must not consume stock")
	assert.Equal(t, int64(0), countSales(t, store))
}

func TestCreateSaleCancelledContext(t *testing.T) {
	store := repo.NewMemoryStore()
	seedProduct(t, store, "p1", 1000, 5, true)
	uc := newCreateSale(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, usecase.CreateSaleInput{
		UserID:        "op-1",
		PaymentMethod: entity.PaymentCash,
		PaymentCents:  1000,
		Items:         []entity.CartLine{{ProductID: "p1", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, 5, stockOf(t, store, "p1"))
	assert.Equal(t, int64(0), countSales(t, store))
}
