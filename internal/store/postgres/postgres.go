package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"elitecontrol/backend/internal/domain"
	"elitecontrol/backend/internal/store"
	"elitecontrol/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	stock       INTEGER NOT NULL CHECK (stock >= 0),
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	id          TEXT PRIMARY KEY,
	sale_date   TIMESTAMPTZ NOT NULL,
	seller_id   TEXT NOT NULL,
	seller_name TEXT NOT NULL DEFAULT '',
	total_cents BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sale_items (
	sale_id          TEXT NOT NULL REFERENCES sales(id),
	line_no          INTEGER NOT NULL,
	product_id       TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	quantity         INTEGER NOT NULL CHECK (quantity > 0),
	unit_price_cents BIGINT NOT NULL CHECK (unit_price_cents >= 0),
	PRIMARY KEY (sale_id, line_no)
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id          TEXT PRIMARY KEY,
	actor_id    TEXT NOT NULL DEFAULT '',
	actor_name  TEXT NOT NULL DEFAULT '',
	actor_role  TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	password   TEXT NOT NULL,
	role       TEXT NOT NULL,
	active     BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (sale_date DESC);
CREATE INDEX IF NOT EXISTS idx_sales_seller ON sales (seller_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at DESC);
`

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price_cents, stock, created_at, updated_at
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, persistErr("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, persistErr("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list products", err)
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, price_cents, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, persistErr("get product", err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" || product.PriceCents < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price_cents, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, product.ID, product.Name, product.Category, product.PriceCents, product.Stock, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, persistErr("insert product", err)
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Category == "" || product.PriceCents < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidInput
	}

	product.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price_cents = $4, stock = $5, updated_at = $6
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.PriceCents, product.Stock, product.UpdatedAt)
	if err != nil {
		return nil, persistErr("update product", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, persistErr("update product", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete product", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return persistErr("delete product", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListSales returns sales newest first. A non-positive limit means the whole
// history, which the stats aggregator depends on.
func (s *Store) ListSales(ctx context.Context, sellerID string, limit int) ([]domain.Sale, error) {
	query := `
		SELECT id, sale_date, seller_id, seller_name, total_cents, created_at
		FROM sales
	`
	args := []any{}
	if sellerID != "" {
		query += ` WHERE seller_id = $1 ORDER BY sale_date DESC, id DESC`
		args = append(args, sellerID)
	} else {
		query += ` ORDER BY sale_date DESC, id DESC`
	}
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list sales", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.Date, &sale.SellerID, &sale.SellerName, &sale.TotalCents, &sale.CreatedAt); err != nil {
			return nil, persistErr("scan sale", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list sales", err)
	}

	for i := range sales {
		items, err := s.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}

	return sales, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sale_date, seller_id, seller_name, total_cents, created_at
		FROM sales
		WHERE id = $1
	`, id).Scan(&sale.ID, &sale.Date, &sale.SellerID, &sale.SellerName, &sale.TotalCents, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, persistErr("get sale", err)
	}

	items, err := s.saleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) saleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, unit_price_cents
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY line_no
	`, saleID)
	if err != nil {
		return nil, persistErr("list sale items", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, persistErr("scan sale item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list sale items", err)
	}
	return items, nil
}

// CreateSale commits the sale insert and every stock decrement in one
// serializable transaction. Stock rows are locked up front, each decrement is
// guarded against going negative, and a failure anywhere rolls the whole batch
// back.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Items) == 0 || sale.SellerID == "" {
		return nil, store.ErrInvalidInput
	}

	qtyByProduct := make(map[string]int, len(sale.Items))
	productIDs := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.ProductID == "" || item.Quantity < 1 || item.UnitPriceCents < 0 {
			return nil, store.ErrInvalidInput
		}
		if _, seen := qtyByProduct[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		qtyByProduct[item.ProductID] += item.Quantity
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, persistErr("begin sale batch", err)
	}
	defer func() { _ = pgTx.Rollback() }()

	rows, err := pgTx.QueryContext(ctx, `
		SELECT id, stock
		FROM products
		WHERE id = ANY($1)
		FOR UPDATE
	`, productIDs)
	if err != nil {
		return nil, persistErr("lock products", err)
	}
	stockByProduct := make(map[string]int, len(productIDs))
	for rows.Next() {
		var id string
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			_ = rows.Close()
			return nil, persistErr("scan stock", err)
		}
		stockByProduct[id] = stock
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, persistErr("lock products", err)
	}
	_ = rows.Close()

	for _, productID := range productIDs {
		stock, exists := stockByProduct[productID]
		if !exists {
			return nil, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
		}
		if stock-qtyByProduct[productID] < 0 {
			return nil, store.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.Date.IsZero() {
		sale.Date = now
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}

	for _, productID := range productIDs {
		_, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = $2
			WHERE id = $3
		`, qtyByProduct[productID], now, productID)
		if err != nil {
			return nil, persistErr("decrement stock", err)
		}
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (id, sale_date, seller_id, seller_name, total_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, sale.ID, sale.Date, sale.SellerID, sale.SellerName, sale.TotalCents, sale.CreatedAt)
	if err != nil {
		return nil, persistErr("insert sale", err)
	}

	for i, item := range sale.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, line_no, product_id, name, quantity, unit_price_cents)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, sale.ID, i+1, item.ProductID, item.Name, item.Quantity, item.UnitPriceCents)
		if err != nil {
			return nil, persistErr("insert sale item", err)
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, persistErr("commit sale batch", err)
	}

	return &sale, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, actor_name, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.ActorID, entry.ActorName, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	if err != nil {
		return persistErr("insert audit log", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, actor_name, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, persistErr("list audit logs", err)
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.ActorName, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, persistErr("scan audit log", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list audit logs", err)
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || user.Password == "" || user.Role == "" {
		return store.ErrInvalidInput
	}
	if user.ID == "" {
		user.ID = xid.New("usr")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, user.ID, email, user.Name, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return persistErr("insert user", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, password, role, active, created_at
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, persistErr("list users", err)
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, persistErr("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list users", err)
	}
	return users, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password, role, active, created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, persistErr("get user", err)
	}
	return &user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, email string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		return persistErr("update user password", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return persistErr("update user password", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", store.ErrPersistence, op, err)
}

func isUniqueViolation(err error) bool {
	// SQLSTATE 23505 = unique_violation.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
