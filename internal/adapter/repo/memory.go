package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

// MemoryStore implements every store port in memory. It backs the tests
// and local development without a MySQL instance. One mutex serializes
// sales, so the unit-of-work semantics match the database adapter:
// stage everything, apply on success, discard on failure.
type MemoryStore struct {
	mu           sync.RWMutex
	products     map[string]entity.Product
	categories   map[string]entity.Category
	users        map[string]entity.User
	transactions map[string]entity.Transaction
	txOrder      []string // insertion order, newest last
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:     map[string]entity.Product{},
		categories:   map[string]entity.Category{},
		users:        map[string]entity.User{},
		transactions: map[string]entity.Transaction{},
	}
}

// memSaleTx stages writes against a locked MemoryStore. Reads observe
// committed state plus this transaction's own stock decrements.
type memSaleTx struct {
	s        *MemoryStore
	taken    map[string]int // staged decrements per product
	inserted *entity.Transaction
}

func (s *MemoryStore) WithinSale(ctx context.Context, fn func(tx usecase.SaleTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memSaleTx{s: s, taken: map[string]int{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err // cancelled before commit: discard the staged writes
	}

	if tx.inserted != nil {
		t := cloneTransaction(*tx.inserted)
		s.transactions[t.ID] = t
		s.txOrder = append(s.txOrder, t.ID)
	}
	for id, qty := range tx.taken {
		p := s.products[id]
		p.Stock -= qty
		p.UpdatedAt = time.Now().UTC()
		s.products[id] = p
	}
	return nil
}

func (t *memSaleTx) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, ok := t.s.products[id]
	if !ok {
		return nil, nil
	}
	p.Stock -= t.taken[id]
	return &p, nil
}

func (t *memSaleTx) LastInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	last := ""
	for _, tr := range t.s.transactions {
		if strings.HasPrefix(tr.InvoiceNumber, prefix+"-") && tr.InvoiceNumber > last {
			last = tr.InvoiceNumber
		}
	}
	return last, nil
}

func (t *memSaleTx) InsertTransaction(ctx context.Context, tr *entity.Transaction) error {
	for _, existing := range t.s.transactions {
		if existing.InvoiceNumber == tr.InvoiceNumber {
			return usecase.ErrInvoiceConflict
		}
	}
	cp := cloneTransaction(*tr)
	t.inserted = &cp
	return nil
}

func (t *memSaleTx) DecrementStock(ctx context.Context, productID string, qty int) (int, error) {
	p, ok := t.s.products[productID]
	if !ok {
		return 0, &usecase.ProductNotFoundError{ProductID: productID}
	}
	available := p.Stock - t.taken[productID]
	if available < qty {
		return 0, &usecase.InsufficientStockError{
			ProductID: productID, Name: p.Name, Available: available, Requested: qty,
		}
	}
	t.taken[productID] += qty
	return available - qty, nil
}

func cloneTransaction(t entity.Transaction) entity.Transaction {
	items := make([]entity.TransactionItem, len(t.Items))
	copy(items, t.Items)
	t.Items = items
	return t
}

// SaleReader

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, usecase.ErrTransactionNotFound
	}
	t = cloneTransaction(t)
	return &t, nil
}

func (s *MemoryStore) List(ctx context.Context, f usecase.SaleFilter) ([]entity.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entity.Transaction
	for _, id := range s.txOrder {
		t := s.transactions[id]
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.PaymentMethod != "" && t.PaymentMethod != f.PaymentMethod {
			continue
		}
		if f.StartDate != nil && t.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && t.CreatedAt.After(*f.EndDate) {
			continue
		}
		matched = append(matched, cloneTransaction(t))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ProductRepo

func (s *MemoryStore) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Barcode == barcode {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListProducts(ctx context.Context, f usecase.ProductFilter) ([]entity.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entity.Product
	for _, p := range s.products {
		if f.IsActive != nil {
			if p.IsActive != *f.IsActive {
				continue
			}
		} else if !p.IsActive {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.Barcode), q) {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, p *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, p *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return usecase.ErrProductNotFound
	}
	s.products[p.ID] = *p
	return nil
}

// Products returns a ProductRepo view of the store.
func (s *MemoryStore) Products() usecase.ProductRepo { return memProducts{s} }

type memProducts struct{ s *MemoryStore }

func (m memProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return m.s.GetProductByID(ctx, id)
}
func (m memProducts) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return m.s.GetByBarcode(ctx, barcode)
}
func (m memProducts) List(ctx context.Context, f usecase.ProductFilter) ([]entity.Product, int64, error) {
	return m.s.ListProducts(ctx, f)
}
func (m memProducts) Create(ctx context.Context, p *entity.Product) error {
	return m.s.CreateProduct(ctx, p)
}
func (m memProducts) Update(ctx context.Context, p *entity.Product) error {
	return m.s.UpdateProduct(ctx, p)
}

// CategoryRepo

func (s *MemoryStore) GetCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) GetCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, c *entity.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, c *entity.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return usecase.ErrCategoryNotFound
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return usecase.ErrCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) CountProducts(ctx context.Context, id string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

// Categories returns a CategoryRepo view of the store.
func (s *MemoryStore) Categories() usecase.CategoryRepo { return memCategories{s} }

type memCategories struct{ s *MemoryStore }

func (m memCategories) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return m.s.GetCategoryByID(ctx, id)
}
func (m memCategories) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	return m.s.GetCategoryByName(ctx, name)
}
func (m memCategories) List(ctx context.Context) ([]entity.Category, error) {
	return m.s.ListCategories(ctx)
}
func (m memCategories) Create(ctx context.Context, c *entity.Category) error {
	return m.s.CreateCategory(ctx, c)
}
func (m memCategories) Update(ctx context.Context, c *entity.Category) error {
	return m.s.UpdateCategory(ctx, c)
}
func (m memCategories) Delete(ctx context.Context, id string) error {
	return m.s.DeleteCategory(ctx, id)
}
func (m memCategories) CountProducts(ctx context.Context, id string) (int64, error) {
	return m.s.CountProducts(ctx, id)
}

// UserRepo

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

// Users returns a UserRepo view of the store.
func (s *MemoryStore) Users() usecase.UserRepo { return memUsers{s} }

type memUsers struct{ s *MemoryStore }

func (m memUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return m.s.GetUserByID(ctx, id)
}
func (m memUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.s.GetUserByEmail(ctx, email)
}
func (m memUsers) Create(ctx context.Context, u *entity.User) error {
	return m.s.CreateUser(ctx, u)
}

// StatsReader

func (s *MemoryStore) SalesTotals(ctx context.Context, start, end time.Time) (usecase.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var t usecase.SalesTotals
	for _, tr := range s.transactions {
		if tr.CreatedAt.Before(start) || tr.CreatedAt.After(end) {
			continue
		}
		t.TotalSalesCents += tr.TotalCents
		t.TotalTransactions++
	}
	return t, nil
}

func (s *MemoryStore) ProductPerformance(ctx context.Context, start, end time.Time, limit int) ([]usecase.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := map[string]*usecase.ProductSales{}
	for _, tr := range s.transactions {
		if tr.CreatedAt.Before(start) || tr.CreatedAt.After(end) {
			continue
		}
		for _, it := range tr.Items {
			ps, ok := agg[it.ProductID]
			if !ok {
				ps = &usecase.ProductSales{ProductID: it.ProductID, ProductName: it.ProductName}
				agg[it.ProductID] = ps
			}
			ps.TotalQuantity += int64(it.Quantity)
			ps.TotalSalesCents += it.SubtotalCents
		}
	}

	out := make([]usecase.ProductSales, 0, len(agg))
	for id, ps := range agg {
		cost := int64(0)
		if p, ok := s.products[id]; ok {
			cost = p.CostCents
		}
		ps.TotalProfitCents = ps.TotalSalesCents - cost*ps.TotalQuantity
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalSalesCents > out[j].TotalSalesCents })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ usecase.SaleStore   = (*MemoryStore)(nil)
	_ usecase.SaleReader  = (*MemoryStore)(nil)
	_ usecase.StatsReader = (*MemoryStore)(nil)
)
