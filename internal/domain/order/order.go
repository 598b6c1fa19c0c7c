package order

import (
	"context"
	"fmt"
	"time"
)

// Sentinel errors surfaced by the repository and service.
var (
	ErrNotFound    = fmt.Errorf("order not found")
	ErrDuplicateID = fmt.Errorf("order id already exists")
)

// Order is a single purchase record identified by a business-chosen order id.
// TotalAmount is expressed in the smallest currency unit (cents, aurar, ...).
type Order struct {
	ID          int64     `json:"id"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	OrderDate   time.Time `json:"order_date"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListFilter narrows and paginates List results. A nil Status or empty
// CustomerID leaves the corresponding predicate unset.
type ListFilter struct {
	Status     *Status
	CustomerID string
	Skip       int
	Limit      int
}

// CurrencyTotal is the revenue accumulated in a single currency.
type CurrencyTotal struct {
	Currency string `json:"currency"`
	Total    int64  `json:"total"`
}

// DailyRevenue is the revenue for one calendar date in one currency.
type DailyRevenue struct {
	Date     string `json:"date"`
	Currency string `json:"currency"`
	Revenue  int64  `json:"revenue"`
}

// Summary aggregates all stored orders: total count, revenue per currency,
// and revenue per day per currency (date descending, currency ascending).
type Summary struct {
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  []CurrencyTotal `json:"total_revenue"`
	RevenuePerDay []DailyRevenue  `json:"revenue_per_day"`
}

// Repository defines persistence operations for orders.
//
// Insert must report ErrDuplicateID when the store's unique constraint on
// order_id rejects the row. The constraint is the authoritative guard against
// concurrent creates; the service's pre-check only produces a friendlier error.
type Repository interface {
	Insert(ctx context.Context, o *Order) (*Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	Update(ctx context.Context, o *Order) (*Order, error)
	Delete(ctx context.Context, orderID string) error
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	Summarize(ctx context.Context) (*Summary, error)
}
