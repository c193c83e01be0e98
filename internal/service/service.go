package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"elitecontrol/backend/internal/domain"
	"elitecontrol/backend/internal/store"
	"elitecontrol/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo store.Repository
}

func New(repo store.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)

	if req.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", store.ErrInvalidInput)
	}
	if req.Category == "" {
		return domain.Product{}, fmt.Errorf("%w: product category is required", store.ErrInvalidInput)
	}
	if req.PriceCents < 0 {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", store.ErrInvalidInput)
	}
	if req.Stock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock must not be negative", store.ErrInvalidInput)
	}

	product := domain.Product{
		ID:         xid.New("prd"),
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%d,stock=%d", created.Name, created.PriceCents, created.Stock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", store.ErrInvalidInput)
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: product name must not be empty", store.ErrInvalidInput)
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, fmt.Errorf("%w: product category must not be empty", store.ErrInvalidInput)
		}
		updated.Category = category
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return domain.Product{}, fmt.Errorf("%w: price must not be negative", store.ErrInvalidInput)
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Product{}, fmt.Errorf("%w: stock must not be negative", store.ErrInvalidInput)
		}
		updated.Stock = *req.Stock
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", saved.ID, fmt.Sprintf("name=%s,price=%d,stock=%d", saved.Name, saved.PriceCents, saved.Stock))
	return *saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: product id is required", store.ErrInvalidInput)
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.logAudit(ctx, "product_delete", "product", id, "")
	return nil
}

// RecordSale validates the request, snapshots line items against the catalog,
// recomputes the total server-side in cents, and commits the sale together
// with its stock decrements through the repository's atomic batch. Seller
// identity always comes from the authenticated actor, never from the payload.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Sale{}, fmt.Errorf("%w: sale requires an authenticated seller", store.ErrInvalidInput)
	}

	if len(req.Items) == 0 {
		return domain.Sale{}, fmt.Errorf("%w: sale must contain at least one item", store.ErrInvalidInput)
	}

	saleDate, err := parseSaleDate(req.Date)
	if err != nil {
		return domain.Sale{}, err
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	totalCents := int64(0)
	for i, line := range req.Items {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return domain.Sale{}, fmt.Errorf("%w: item %d: product id is required", store.ErrInvalidInput, i+1)
		}
		if line.Quantity < 1 {
			return domain.Sale{}, fmt.Errorf("%w: item %d: quantity must be at least 1", store.ErrInvalidInput, i+1)
		}
		if line.UnitPriceCents < 0 {
			return domain.Sale{}, fmt.Errorf("%w: item %d: unit price must not be negative", store.ErrInvalidInput, i+1)
		}

		name := strings.TrimSpace(line.Name)
		product, err := s.repo.GetProductByID(ctx, productID)
		switch {
		case err == nil:
			// Snapshot the catalog name so the ranking keys stay stable even
			// if the product is renamed later.
			name = product.Name
		case errors.Is(err, store.ErrNotFound):
			// Let the batch reject the unknown product so the error carries
			// the offending id.
		default:
			return domain.Sale{}, err
		}

		items = append(items, domain.SaleItem{
			ProductID:      productID,
			Name:           name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
		totalCents += int64(line.Quantity) * line.UnitPriceCents
	}

	sale := domain.Sale{
		ID:         xid.New("sale"),
		Date:       saleDate,
		SellerID:   actor.ID,
		SellerName: actor.Name,
		Items:      items,
		TotalCents: totalCents,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.logAudit(ctx, "sale_record", "sale", created.ID, fmt.Sprintf("items=%d,total=%d", len(created.Items), created.TotalCents))
	return *created, nil
}

// ListSales returns recorded sales newest first. Sellers only ever see their
// own sales regardless of what they ask for.
func (s *Service) ListSales(ctx context.Context, sellerID string, limit int) ([]domain.Sale, error) {
	if actor, ok := ActorFromContext(ctx); ok && actor.Role == domain.RoleSeller {
		sellerID = actor.ID
	}
	return s.repo.ListSales(ctx, strings.TrimSpace(sellerID), limit)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.GetSaleByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Sale{}, err
	}
	if actor, ok := ActorFromContext(ctx); ok && actor.Role == domain.RoleSeller && sale.SellerID != actor.ID {
		return domain.Sale{}, store.ErrNotFound
	}
	return *sale, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, limit)
}

func parseSaleDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: date must be RFC3339 or YYYY-MM-DD", store.ErrInvalidInput)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Name: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:         xid.New("audit"),
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
