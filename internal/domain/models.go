package domain

import "time"

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

type ProductUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	Category   *string `json:"category,omitempty"`
	PriceCents *int64  `json:"price_cents,omitempty"`
	Stock      *int    `json:"stock,omitempty"`
}

// SaleItem is one line of a sale. Name and unit price are snapshots taken at
// posting time; later product edits do not change recorded sales.
type SaleItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Sale struct {
	ID         string     `json:"id"`
	Date       time.Time  `json:"date"`
	SellerID   string     `json:"seller_id"`
	SellerName string     `json:"seller_name"`
	Items      []SaleItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SaleItemRequest struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// SaleCreateRequest carries the caller-supplied sale header and line items.
// The seller identity always comes from the authenticated actor, and the total
// is always recomputed server-side; neither is accepted from the client.
type SaleCreateRequest struct {
	Date  string            `json:"date"`
	Items []SaleItemRequest `json:"items"`
}

type ProductStats struct {
	TotalProducts int            `json:"total_products"`
	LowStock      int            `json:"low_stock"`
	Categories    map[string]int `json:"categories"`
}

type SalesStats struct {
	TotalSales        int   `json:"total_sales"`
	TodaySales        int   `json:"today_sales"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
	TodayRevenueCents int64 `json:"today_revenue_cents"`
}

type TopProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type DashboardSummary struct {
	Products    ProductStats `json:"products"`
	Sales       SalesStats   `json:"sales"`
	TopProducts []TopProduct `json:"top_products"`
	GeneratedAt string       `json:"generated_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor is the authenticated principal attached to a request context.
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	ID        string
	Email     string
	Name      string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type UserCreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	ActorRole  string    `json:"actor_role"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	RoleOwner  = "owner"
	RoleStock  = "stock"
	RoleSeller = "seller"
)
