package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"elitecontrol/backend/internal/domain"
	"elitecontrol/backend/internal/store"
	"elitecontrol/backend/internal/xid"
)

type Store struct {
	mu           sync.RWMutex
	products     map[string]domain.Product
	salesByID    map[string]domain.Sale
	auditLogs    []domain.AuditLog
	usersByEmail map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Passwords are read from SEED_OWNER_PASSWORD, SEED_STOCK_PASSWORD and
// SEED_SELLER_PASSWORD environment variables. If unset, hardcoded dev
// defaults are used with a warning printed to stdout. These credentials are
// never used in production (the backend uses PostgreSQL when DATABASE_URL is
// set).
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "dono123")
	stockPwd := envOr("SEED_STOCK_PASSWORD", "estoque123")
	sellerPwd := envOr("SEED_SELLER_PASSWORD", "vendas123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" || os.Getenv("SEED_STOCK_PASSWORD") == "" || os.Getenv("SEED_SELLER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD, SEED_STOCK_PASSWORD and SEED_SELLER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		email    string
		name     string
		password string
		role     string
	}{
		{"dono@elitecontrol.com", "Carlos Mendes", ownerPwd, domain.RoleOwner},
		{"estoque@elitecontrol.com", "Ana Beatriz", stockPwd, domain.RoleStock},
		{"vendas@elitecontrol.com", "Rafael Souza", sellerPwd, domain.RoleSeller},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.email, err)
		}
		users[u.email] = domain.UserAccount{
			ID:        xid.New("usr"),
			Email:     u.email,
			Name:      u.name,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	products := []domain.Product{
		{ID: "PRD-NB-01", Name: "Notebook Pro 14", Category: "informatica", PriceCents: 489900, Stock: 14},
		{ID: "PRD-MN-01", Name: "Monitor 24 Full HD", Category: "informatica", PriceCents: 89900, Stock: 25},
		{ID: "PRD-TC-01", Name: "Teclado Mecanico", Category: "perifericos", PriceCents: 29900, Stock: 40},
		{ID: "PRD-MS-01", Name: "Mouse Sem Fio", Category: "perifericos", PriceCents: 12900, Stock: 60},
		{ID: "PRD-HS-01", Name: "Headset Gamer", Category: "perifericos", PriceCents: 19900, Stock: 18},
		{ID: "PRD-CB-01", Name: "Cabo HDMI 2m", Category: "acessorios", PriceCents: 3900, Stock: 120},
		{ID: "PRD-HB-01", Name: "Hub USB-C", Category: "acessorios", PriceCents: 15900, Stock: 12},
		{ID: "PRD-SSD-01", Name: "SSD 1TB NVMe", Category: "componentes", PriceCents: 54900, Stock: 30},
		{ID: "PRD-MEM-01", Name: "Memoria 16GB DDR5", Category: "componentes", PriceCents: 39900, Stock: 8},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		productMap[p.ID] = p
	}

	return &Store{
		products:     productMap,
		salesByID:    make(map[string]domain.Sale),
		auditLogs:    make([]domain.AuditLog, 0, 128),
		usersByEmail: seedUsers(),
	}
}

// NewEmpty returns a store with no seeded catalog or users. Intended for tests
// that need full control over the initial state.
func NewEmpty() *Store {
	return &Store{
		products:     make(map[string]domain.Product),
		salesByID:    make(map[string]domain.Sale),
		auditLogs:    make([]domain.AuditLog, 0, 16),
		usersByEmail: make(map[string]domain.UserAccount),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" || product.PriceCents < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.Category == "" || product.PriceCents < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}
	existing, exists := s.products[product.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListSales(_ context.Context, sellerID string, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		if sellerID != "" && sale.SellerID != sellerID {
			continue
		}
		sales = append(sales, cloneSale(sale))
	}

	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) GetSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySale := cloneSale(sale)
	return &copySale, nil
}

// CreateSale applies the sale insert and all stock decrements as one
// all-or-nothing batch: every line item is validated against the catalog and
// current stock before anything is mutated, all under a single lock
// acquisition, so no reader ever observes a partially applied sale.
func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sale.Items) == 0 || sale.SellerID == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.salesByID[sale.ID]; sale.ID != "" && exists {
		return nil, store.ErrInvalidInput
	}

	qtyByProduct := make(map[string]int, len(sale.Items))
	for _, item := range sale.Items {
		if item.ProductID == "" || item.Quantity < 1 || item.UnitPriceCents < 0 {
			return nil, store.ErrInvalidInput
		}
		qtyByProduct[item.ProductID] += item.Quantity
	}

	for productID, qty := range qtyByProduct {
		product, exists := s.products[productID]
		if !exists {
			return nil, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
		}
		if product.Stock-qty < 0 {
			return nil, store.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	for productID, qty := range qtyByProduct {
		product := s.products[productID]
		product.Stock -= qty
		product.UpdatedAt = now
		s.products[productID] = product
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.Date.IsZero() {
		sale.Date = now
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	s.salesByID[sale.ID] = cloneSale(sale)
	created := cloneSale(sale)
	return &created, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.AuditLog, len(s.auditLogs))
	copy(result, s.auditLogs)
	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || user.Password == "" || user.Role == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByEmail[email]; exists {
		return store.ErrInvalidInput
	}
	if user.ID == "" {
		user.ID = xid.New("usr")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = email
	s.usersByEmail[email] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByEmail))
	for _, user := range s.usersByEmail {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Email, b.Email)
	})
	return users, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyUser := user
	return &copyUser, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, email string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	user, exists := s.usersByEmail[email]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByEmail[email] = user
	return nil
}

func cloneSale(sale domain.Sale) domain.Sale {
	cloned := sale
	cloned.Items = make([]domain.SaleItem, len(sale.Items))
	copy(cloned.Items, sale.Items)
	return cloned
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
