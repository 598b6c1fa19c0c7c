package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordural/order-service/internal/domain/order"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

const orderColumns = `id, order_id, customer_id, order_date, total_amount, currency, status, created_at, updated_at`

const insertOrderSQL = `INSERT INTO orders (order_id, customer_id, order_date, total_amount, currency, status)
	VALUES ($1, $2, COALESCE($3, now()), $4, $5, $6)
	RETURNING ` + orderColumns

const getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

const listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
	WHERE ($1::text IS NULL OR status = $1)
	  AND ($2::text IS NULL OR customer_id = $2)
	ORDER BY id
	OFFSET $3 LIMIT $4`

const updateOrderSQL = `UPDATE orders
	SET customer_id = $2, order_date = $3, total_amount = $4, currency = $5, status = $6, updated_at = now()
	WHERE order_id = $1
	RETURNING ` + orderColumns

const deleteOrderSQL = `DELETE FROM orders WHERE order_id = $1`

const listByCustomerSQL = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY id`

const countOrdersSQL = `SELECT count(*) FROM orders`

const revenueByCurrencySQL = `SELECT currency, sum(total_amount) FROM orders
	GROUP BY currency ORDER BY currency`

const revenueByDaySQL = `SELECT order_date::date AS day, currency, sum(total_amount) FROM orders
	GROUP BY day, currency ORDER BY day DESC, currency`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Insert stores a new order and returns the row with the store-assigned
// fields filled in. A zero OrderDate is replaced by now() at insert. Unique
// constraint rejections on order_id map to order.ErrDuplicateID, which makes
// the constraint the authoritative guard against racing creates.
func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) (*order.Order, error) {
	var orderDate *time.Time
	if !o.OrderDate.IsZero() {
		orderDate = &o.OrderDate
	}

	row := r.pool.QueryRow(ctx, insertOrderSQL,
		o.OrderID, o.CustomerID, orderDate, o.TotalAmount, o.Currency, o.Status.String(),
	)

	stored, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, order.ErrDuplicateID
		}
		return nil, fmt.Errorf("inserting order %q: %w", o.OrderID, err)
	}
	return stored, nil
}

// GetByOrderID returns the order with the given business id.
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderSQL, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}
	return o, nil
}

// List returns orders matching the filter, ordered by insertion (internal id).
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	var status, customer *string
	if f.Status != nil {
		s := f.Status.String()
		status = &s
	}
	if f.CustomerID != "" {
		customer = &f.CustomerID
	}

	rows, err := r.pool.Query(ctx, listOrdersSQL, status, customer, f.Skip, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return collectOrders(rows)
}

// Update persists the merged record and refreshes updated_at.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, updateOrderSQL,
		o.OrderID, o.CustomerID, o.OrderDate, o.TotalAmount, o.Currency, o.Status.String(),
	)

	updated, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q: %w", o.OrderID, err)
	}
	return updated, nil
}

// Delete removes the order permanently.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, orderID)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListByCustomer returns every order with the exact customer id, unpaginated.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listByCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %q: %w", customerID, err)
	}
	return collectOrders(rows)
}

// Summarize computes the aggregate view in three queries: total count,
// revenue per currency, and revenue per calendar date per currency.
func (r *OrderRepository) Summarize(ctx context.Context) (*order.Summary, error) {
	s := &order.Summary{
		TotalRevenue:  []order.CurrencyTotal{},
		RevenuePerDay: []order.DailyRevenue{},
	}

	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&s.TotalOrders); err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, revenueByCurrencySQL)
	if err != nil {
		return nil, fmt.Errorf("revenue by currency: %w", err)
	}
	for rows.Next() {
		var ct order.CurrencyTotal
		if err := rows.Scan(&ct.Currency, &ct.Total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning currency total: %w", err)
		}
		s.TotalRevenue = append(s.TotalRevenue, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("revenue by currency rows: %w", err)
	}

	rows, err = r.pool.Query(ctx, revenueByDaySQL)
	if err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}
	for rows.Next() {
		var (
			day time.Time
			dr  order.DailyRevenue
		)
		if err := rows.Scan(&day, &dr.Currency, &dr.Revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning daily revenue: %w", err)
		}
		dr.Date = day.Format("2006-01-02")
		s.RevenuePerDay = append(s.RevenuePerDay, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("revenue by day rows: %w", err)
	}

	return s, nil
}

// scanOrder reads one order row. The status column is stored as text; rows
// containing a status outside the enumerated set fail the scan rather than
// leak an unrepresentable value into the domain.
func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.OrderID, &o.CustomerID, &o.OrderDate,
		&o.TotalAmount, &o.Currency, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status, err = order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// collectOrders drains rows into a slice, always returning a non-nil slice so
// empty results serialize as [] rather than null.
func collectOrders(rows pgx.Rows) ([]order.Order, error) {
	defer rows.Close()

	out := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return out, nil
}
