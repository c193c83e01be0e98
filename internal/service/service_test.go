package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"elitecontrol/backend/internal/domain"
	"elitecontrol/backend/internal/store"
	"elitecontrol/backend/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store, domain.Product, domain.Product) {
	t.Helper()
	repo := memory.NewEmpty()
	svc := New(repo)
	ctx := ownerContext()

	notebook, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Name:       "Notebook Pro 14",
		Category:   "informatica",
		PriceCents: 1000,
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	mouse, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Name:       "Mouse Sem Fio",
		Category:   "perifericos",
		PriceCents: 450,
		Stock:      5,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return svc, repo, notebook, mouse
}

func ownerContext() context.Context {
	return WithActor(context.Background(), domain.Actor{
		ID:   "user-owner",
		Name: "Carlos Mendes",
		Role: domain.RoleOwner,
	})
}

func sellerContext(id string) context.Context {
	return WithActor(context.Background(), domain.Actor{
		ID:   id,
		Name: "Rafael Souza",
		Role: domain.RoleSeller,
	})
}

func TestRecordSaleComputesTotalAndDecrementsStock(t *testing.T) {
	svc, _, notebook, mouse := newTestService(t)
	ctx := sellerContext("user-seller")

	sale, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 3, UnitPriceCents: 1000},
			{ProductID: mouse.ID, Quantity: 2, UnitPriceCents: 450},
		},
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if sale.TotalCents != 3900 {
		t.Fatalf("expected total 3900 cents, got %d", sale.TotalCents)
	}
	if sale.SellerID != "user-seller" {
		t.Fatalf("expected seller from actor, got %q", sale.SellerID)
	}

	after1, err := svc.GetProduct(ctx, notebook.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after1.Stock != 7 {
		t.Fatalf("expected stock 7 after sale, got %d", after1.Stock)
	}
	after2, err := svc.GetProduct(ctx, mouse.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after2.Stock != 3 {
		t.Fatalf("expected stock 3 after sale, got %d", after2.Stock)
	}
}

func TestRecordSaleUsesSuppliedUnitPriceVerbatim(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	// The total sums the supplied unit prices, not the catalog's. A discounted
	// line below the list price and a zero-price giveaway line both count as
	// written.
	sale, err := svc.RecordSale(sellerContext("user-seller"), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 2, UnitPriceCents: 500},
		},
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if sale.TotalCents != 1000 {
		t.Fatalf("expected total 1000 cents from supplied price, got %d", sale.TotalCents)
	}
	if sale.Items[0].Name != "Notebook Pro 14" {
		t.Fatalf("expected catalog name snapshot, got %q", sale.Items[0].Name)
	}
}

func TestRecordSaleZeroUnitPriceLineCostsNothing(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)
	ctx := sellerContext("user-seller")

	sale, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 2, UnitPriceCents: 0},
		},
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if sale.TotalCents != 0 {
		t.Fatalf("expected total 0 for zero unit price, got %d", sale.TotalCents)
	}
	if sale.Items[0].UnitPriceCents != 0 {
		t.Fatalf("expected unit price kept at 0, got %d", sale.Items[0].UnitPriceCents)
	}

	// Stock still moves for a zero-price line.
	after, err := svc.GetProduct(ctx, notebook.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", after.Stock)
	}
}

func TestRecordSaleRejectsEmptyItems(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.RecordSale(sellerContext("user-seller"), domain.SaleCreateRequest{})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	for _, qty := range []int{0, -2} {
		_, err := svc.RecordSale(sellerContext("user-seller"), domain.SaleCreateRequest{
			Items: []domain.SaleItemRequest{
				{ProductID: notebook.ID, Quantity: qty, UnitPriceCents: 1000},
			},
		})
		if !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("quantity %d: expected ErrInvalidInput, got %v", qty, err)
		}
	}
}

func TestRecordSaleRejectsBadDate(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	_, err := svc.RecordSale(sellerContext("user-seller"), domain.SaleCreateRequest{
		Date: "10/03/2025",
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 1, UnitPriceCents: 1000},
		},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad date, got %v", err)
	}
}

func TestRecordSaleRequiresActor(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	_, err := svc.RecordSale(context.Background(), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 1, UnitPriceCents: 1000},
		},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without actor, got %v", err)
	}
}

// flakyRepo fails every product lookup so the snapshot path's error handling
// can be observed.
type flakyRepo struct {
	store.Repository
}

func (r flakyRepo) GetProductByID(context.Context, string) (*domain.Product, error) {
	return nil, fmt.Errorf("%w: connection reset", store.ErrPersistence)
}

func TestRecordSalePropagatesSnapshotLookupFailure(t *testing.T) {
	repo := memory.NewEmpty()
	if _, err := repo.CreateProduct(context.Background(), domain.Product{
		ID: "prd-a", Name: "Produto A", Category: "geral", PriceCents: 1000, Stock: 10,
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	svc := New(flakyRepo{Repository: repo})

	_, err := svc.RecordSale(sellerContext("user-seller"), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: "prd-a", Quantity: 1, UnitPriceCents: 1000},
		},
	})
	if !errors.Is(err, store.ErrPersistence) {
		t.Fatalf("expected ErrPersistence from snapshot lookup, got %v", err)
	}

	sales, err := repo.ListSales(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale recorded, got %d", len(sales))
	}
}

func TestRecordSaleUnknownProductLeavesStockUnchanged(t *testing.T) {
	svc, _, notebook, mouse := newTestService(t)
	ctx := sellerContext("user-seller")

	_, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 3, UnitPriceCents: 1000},
			{ProductID: "prd-missing", Quantity: 1, UnitPriceCents: 100},
		},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, err := svc.GetProduct(ctx, notebook.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != 10 {
		t.Fatalf("expected stock untouched at 10, got %d", after.Stock)
	}
	afterMouse, err := svc.GetProduct(ctx, mouse.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if afterMouse.Stock != 5 {
		t.Fatalf("expected stock untouched at 5, got %d", afterMouse.Stock)
	}

	sales, err := svc.ListSales(ownerContext(), "", 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale recorded, got %d", len(sales))
	}
}

func TestRecordSaleInsufficientStockAbortsBatch(t *testing.T) {
	svc, _, notebook, mouse := newTestService(t)
	ctx := sellerContext("user-seller")

	_, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: notebook.ID, Quantity: 2, UnitPriceCents: 1000},
			{ProductID: mouse.ID, Quantity: 6, UnitPriceCents: 450},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	after, err := svc.GetProduct(ctx, notebook.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != 10 {
		t.Fatalf("expected stock untouched at 10, got %d", after.Stock)
	}
}

func TestRecordSaleAggregatesRepeatedLines(t *testing.T) {
	svc, _, _, mouse := newTestService(t)
	ctx := sellerContext("user-seller")

	// Two lines for the same product must be summed before the stock check.
	_, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{
			{ProductID: mouse.ID, Quantity: 3, UnitPriceCents: 450},
			{ProductID: mouse.ID, Quantity: 3, UnitPriceCents: 450},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock for summed lines, got %v", err)
	}
}

func TestListSalesScopesSellersToOwnSales(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	if _, err := svc.RecordSale(sellerContext("seller-a"), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{{ProductID: notebook.ID, Quantity: 1, UnitPriceCents: 1000}},
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if _, err := svc.RecordSale(sellerContext("seller-b"), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{{ProductID: notebook.ID, Quantity: 1, UnitPriceCents: 1000}},
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	own, err := svc.ListSales(sellerContext("seller-a"), "seller-b", 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(own) != 1 || own[0].SellerID != "seller-a" {
		t.Fatalf("expected only seller-a sales, got %+v", own)
	}

	all, err := svc.ListSales(ownerContext(), "", 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected owner to see both sales, got %d", len(all))
	}
}

func TestGetSaleHidesOtherSellersSales(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	sale, err := svc.RecordSale(sellerContext("seller-a"), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{{ProductID: notebook.ID, Quantity: 1, UnitPriceCents: 1000}},
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if _, err := svc.GetSale(sellerContext("seller-b"), sale.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign sale, got %v", err)
	}
	if _, err := svc.GetSale(ownerContext(), sale.ID); err != nil {
		t.Fatalf("owner should see any sale: %v", err)
	}
}

func TestProductValidation(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)
	ctx := ownerContext()

	if _, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Category: "informatica", PriceCents: 100}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "Teclado", Category: "perifericos", PriceCents: -1}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}

	negative := -5
	if _, err := svc.UpdateProduct(ctx, notebook.ID, domain.ProductUpdateRequest{Stock: &negative}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative stock, got %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, "prd-missing", domain.ProductUpdateRequest{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}
}

func TestAuditTrailRecordsSaleAndProductActions(t *testing.T) {
	svc, _, notebook, _ := newTestService(t)

	if _, err := svc.RecordSale(sellerContext("seller-a"), domain.SaleCreateRequest{
		Items: []domain.SaleItemRequest{{ProductID: notebook.ID, Quantity: 1, UnitPriceCents: 1000}},
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	logs, err := svc.ListAuditLogs(ownerContext(), 10)
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}

	found := false
	for _, entry := range logs {
		if entry.Action == "sale_record" && entry.ActorID == "seller-a" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sale_record audit entry, got %+v", logs)
	}
}
