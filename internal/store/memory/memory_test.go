package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"elitecontrol/backend/internal/domain"
	"elitecontrol/backend/internal/store"
)

func TestSeededCatalogAndUsers(t *testing.T) {
	repo := NewSeeded()
	ctx := context.Background()

	products, err := repo.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("expected seeded products")
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	roles := map[string]bool{}
	for _, user := range users {
		roles[user.Role] = true
	}
	for _, role := range []string{domain.RoleOwner, domain.RoleStock, domain.RoleSeller} {
		if !roles[role] {
			t.Fatalf("expected seeded %s account", role)
		}
	}
}

func TestCreateSaleDecrementsEveryProduct(t *testing.T) {
	repo := NewEmpty()
	ctx := context.Background()

	mustProduct(t, repo, "prd-a", "Produto A", 10)
	mustProduct(t, repo, "prd-b", "Produto B", 5)

	_, err := repo.CreateSale(ctx, domain.Sale{
		ID:       "sale-1",
		SellerID: "seller-1",
		Items: []domain.SaleItem{
			{ProductID: "prd-a", Name: "Produto A", Quantity: 3, UnitPriceCents: 1000},
			{ProductID: "prd-b", Name: "Produto B", Quantity: 2, UnitPriceCents: 450},
		},
		TotalCents: 3900,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if got := mustStock(t, repo, "prd-a"); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}
	if got := mustStock(t, repo, "prd-b"); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
}

func TestCreateSaleRollsBackOnMissingProduct(t *testing.T) {
	repo := NewEmpty()
	ctx := context.Background()

	mustProduct(t, repo, "prd-a", "Produto A", 10)

	_, err := repo.CreateSale(ctx, domain.Sale{
		ID:       "sale-1",
		SellerID: "seller-1",
		Items: []domain.SaleItem{
			{ProductID: "prd-a", Name: "Produto A", Quantity: 3, UnitPriceCents: 1000},
			{ProductID: "prd-missing", Quantity: 1, UnitPriceCents: 100},
		},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if got := mustStock(t, repo, "prd-a"); got != 10 {
		t.Fatalf("expected stock untouched at 10, got %d", got)
	}
	if _, err := repo.GetSaleByID(ctx, "sale-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no sale persisted, got %v", err)
	}
}

func TestCreateSaleRejectsInsufficientStock(t *testing.T) {
	repo := NewEmpty()
	ctx := context.Background()

	mustProduct(t, repo, "prd-a", "Produto A", 4)

	_, err := repo.CreateSale(ctx, domain.Sale{
		ID:       "sale-1",
		SellerID: "seller-1",
		Items: []domain.SaleItem{
			{ProductID: "prd-a", Name: "Produto A", Quantity: 5, UnitPriceCents: 1000},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := mustStock(t, repo, "prd-a"); got != 4 {
		t.Fatalf("expected stock untouched at 4, got %d", got)
	}
}

func TestCreateSaleRejectsDuplicateID(t *testing.T) {
	repo := NewEmpty()
	ctx := context.Background()

	mustProduct(t, repo, "prd-a", "Produto A", 10)

	sale := domain.Sale{
		ID:       "sale-1",
		SellerID: "seller-1",
		Items: []domain.SaleItem{
			{ProductID: "prd-a", Name: "Produto A", Quantity: 1, UnitPriceCents: 1000},
		},
	}
	if _, err := repo.CreateSale(ctx, sale); err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := repo.CreateSale(ctx, sale); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate id, got %v", err)
	}
	if got := mustStock(t, repo, "prd-a"); got != 9 {
		t.Fatalf("expected stock 9 after single sale, got %d", got)
	}
}

func TestListSalesNewestFirstWithFilterAndLimit(t *testing.T) {
	repo := NewEmpty()
	ctx := context.Background()

	mustProduct(t, repo, "prd-a", "Produto A", 100)

	base := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	for i, tc := range []struct {
		id     string
		seller string
		offset time.Duration
	}{
		{"sale-old", "seller-1", 0},
		{"sale-mid", "seller-2", time.Hour},
		{"sale-new", "seller-1", 2 * time.Hour},
	} {
		_, err := repo.CreateSale(ctx, domain.Sale{
			ID:       tc.id,
			SellerID: tc.seller,
			Date:     base.Add(tc.offset),
			Items: []domain.SaleItem{
				{ProductID: "prd-a", Name: "Produto A", Quantity: 1, UnitPriceCents: 100},
			},
		})
		if err != nil {
			t.Fatalf("create sale %d: %v", i, err)
		}
	}

	all, err := repo.ListSales(ctx, "", 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(all) != 3 || all[0].ID != "sale-new" || all[2].ID != "sale-old" {
		t.Fatalf("unexpected order: %+v", saleIDs(all))
	}

	filtered, err := repo.ListSales(ctx, "seller-1", 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 sales for seller-1, got %d", len(filtered))
	}

	limited, err := repo.ListSales(ctx, "", 1)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "sale-new" {
		t.Fatalf("expected newest sale only, got %+v", saleIDs(limited))
	}
}

func TestUserLifecycle(t *testing.T) {
	repo := NewEmpty()
	ctx := context.Background()

	err := repo.CreateUser(ctx, domain.UserAccount{
		Email:    "novo@elitecontrol.com",
		Name:     "Novo Usuario",
		Password: "$2a$10$fakehashfakehashfakehash",
		Role:     domain.RoleSeller,
		Active:   true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	user, err := repo.GetUserByEmail(ctx, "novo@elitecontrol.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}

	if err := repo.UpdateUserPassword(ctx, "novo@elitecontrol.com", "$2a$10$otherhashotherhashother"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	updated, err := repo.GetUserByEmail(ctx, "novo@elitecontrol.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if updated.Password == user.Password {
		t.Fatalf("expected password to change")
	}

	if _, err := repo.GetUserByEmail(ctx, "missing@elitecontrol.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func mustProduct(t *testing.T, repo *Store, id, name string, stock int) {
	t.Helper()
	_, err := repo.CreateProduct(context.Background(), domain.Product{
		ID:         id,
		Name:       name,
		Category:   "geral",
		PriceCents: 1000,
		Stock:      stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", id, err)
	}
}

func mustStock(t *testing.T, repo *Store, id string) int {
	t.Helper()
	product, err := repo.GetProductByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get product %s: %v", id, err)
	}
	return product.Stock
}

func saleIDs(sales []domain.Sale) []string {
	ids := make([]string, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
	}
	return ids
}
