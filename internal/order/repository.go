package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"belleza-be/internal/customer"
	"belleza-be/internal/db"
	"belleza-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)
}

// CreateParams is a validated order request. Shipping is nil for meet-ups.
// FullName is the recipient as given at checkout and is stored on the order
// itself, independent of later profile edits.
type CreateParams struct {
	Phone          string
	FullName       *string
	Profile        customer.ProfileInput
	DeliveryType   DeliveryType
	Shipping       *ShippingInput
	Lines          []LineInput
	IdempotencyKey *string
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create resolves the customer, re-prices the lines against locked product
// rows, writes the order with its items and decrements stock, all in one
// transaction.
func (r *repository) Create(ctx context.Context, params CreateParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.Int("line_count", len(params.Lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	customers := customer.NewRepository(tx)
	c, err := customers.FindOrCreate(ctx, params.Phone)
	if err != nil {
		return nil, err
	}
	if !params.Profile.IsEmpty() {
		if c, err = customers.UpdateProfile(ctx, c.ID, params.Profile); err != nil {
			return nil, err
		}
	}

	catalog, err := lockCatalog(ctx, tx, params.Lines)
	if err != nil {
		log.Error("failed to lock products", zap.Error(err))
		return nil, err
	}

	items, total, err := priceLines(params.Lines, catalog)
	if err != nil {
		log.Info("order rejected", zap.Error(err))
		return nil, err
	}

	o := Order{
		ID:           uuid.NewString(),
		CustomerID:   c.ID,
		Status:       StatusPending,
		DeliveryType: params.DeliveryType,
		FullName:     params.FullName,
		TotalAmount:  total,
		Customer:     &CustomerRef{ID: c.ID, Phone: c.Phone, Name: c.Name, Email: c.Email},
	}
	if s := params.Shipping; s != nil {
		o.Address, o.City, o.Province, o.PostalCode = &s.Address, &s.City, &s.Province, &s.PostalCode
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, customer_id, status, delivery_type, full_name, address, city,
			province, postal_code, total_amount, idempotency_key
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		o.ID, o.CustomerID, o.Status, o.DeliveryType, o.FullName, o.Address, o.City,
		o.Province, o.PostalCode, o.TotalAmount, params.IdempotencyKey,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if db.IsUniqueViolation(err, idempotencyConstraint) {
		return nil, errDuplicateIdempotency
	}
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = o.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, title, quantity, price)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			items[i].ID, o.ID, items[i].ProductID, items[i].Title, items[i].Quantity, items[i].Price,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", items[i].ProductID),
				zap.Error(err),
			)
			return nil, err
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
			items[i].Quantity, items[i].ProductID,
		)
		if err != nil {
			log.Error("failed to decrement stock", zap.String("product_id", items[i].ProductID), zap.Error(err))
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			log.Info("stock exhausted during order", zap.String("product_id", items[i].ProductID))
			return nil, ErrOutOfStock
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	o.Items = items
	log.Info("order transaction committed",
		zap.String("order_id", o.ID),
		zap.Int64("total_amount", o.TotalAmount),
	)
	return &o, nil
}

// lockCatalog reads the ordered products with row locks, in id order so
// concurrent orders acquire locks consistently.
func lockCatalog(ctx context.Context, q db.Querier, lines []LineInput) (map[string]CatalogEntry, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, title, price, stock, is_active
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalog := make(map[string]CatalogEntry, len(ids))
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.ProductID, &e.Title, &e.Price, &e.Stock, &e.IsActive); err != nil {
			return nil, err
		}
		catalog[e.ProductID] = e
	}
	return catalog, rows.Err()
}

const selectOrder = `
	SELECT
		o.id, o.customer_id, o.status, o.delivery_type, o.full_name, o.address, o.city,
		o.province, o.postal_code, o.total_amount, o.created_at, o.updated_at,
		cu.phone, cu.name, cu.email
	FROM orders o
	JOIN customers cu ON cu.id = o.customer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	ref := CustomerRef{}

	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.DeliveryType, &o.FullName, &o.Address, &o.City,
		&o.Province, &o.PostalCode, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
		&ref.Phone, &ref.Name, &ref.Email,
	)
	if err != nil {
		return nil, err
	}

	ref.ID = o.CustomerID
	o.Customer = &ref
	o.Items = []Item{}
	return &o, nil
}

func (r *repository) getOne(ctx context.Context, where string, arg any) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, "o.id = $1", id)
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	return r.getOne(ctx, "o.idempotency_key = $1", key)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	where := []string{}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}

	query := selectOrder
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, title, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`,
		pq.Array(ids),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Quantity, &it.Price); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus applies an admin status change. Cancelling puts the ordered
// quantities back into stock within the same transaction.
func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateOrderStatus"),
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Status
	err = tx.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if current != status {
		if !CanTransition(current, status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, status)
		}

		if status == StatusCancelled {
			if _, err := tx.ExecContext(ctx, `
				UPDATE products p
				SET stock = p.stock + oi.quantity, updated_at = NOW()
				FROM order_items oi
				WHERE oi.order_id = $1 AND p.id = oi.product_id`, id); err != nil {
				log.Error("failed to restore stock", zap.Error(err))
				return nil, err
			}
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1", id, status); err != nil {
			log.Error("failed to update status", zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("order status updated", zap.String("previous", string(current)))
	return r.GetByID(ctx, id)
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM customers),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'PAID'),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'PAID'), 0)
		FROM orders`,
	).Scan(
		&s.TotalProducts, &s.TotalCategories, &s.TotalCustomers,
		&s.TotalOrders, &s.PendingOrders, &s.PaidOrders, &s.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
