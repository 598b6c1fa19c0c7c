package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Service encapsulates the order business logic: validation, normalization,
// and the duplicate pre-check, in front of the repository.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Create validates and normalizes the payload, rejects duplicate business ids,
// and persists the order. The store assigns id, created_at, updated_at, and
// order_date when the payload carries none.
//
// The duplicate lookup and the insert are separate store calls; a create
// racing past the lookup is still rejected by the unique constraint and
// surfaces as ErrDuplicateID from Insert.
func (s *Service) Create(ctx context.Context, p *CreatePayload) (*Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Normalize()

	_, err := s.orders.GetByOrderID(ctx, p.OrderID)
	switch {
	case err == nil:
		return nil, ErrDuplicateID
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("check existing order: %w", err)
	}

	o := &Order{
		OrderID:     p.OrderID,
		CustomerID:  p.CustomerID,
		TotalAmount: p.TotalAmount,
		Currency:    p.Currency,
		Status:      p.Status,
	}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}

	created, err := s.orders.Insert(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("insert order %q: %w", p.OrderID, err)
	}
	return created, nil
}

// Get returns the order with the given business id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.GetByOrderID(ctx, orderID)
}

// List returns orders matching the filter. A zero limit yields an empty
// slice, not an error.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	if f.Limit == 0 {
		return []Order{}, nil
	}
	return s.orders.List(ctx, f)
}

// Update applies the present fields of the partial payload onto the stored
// record, field by field over the mutable allow-list, and persists the merge.
// updated_at is refreshed by the store.
func (s *Service) Update(ctx context.Context, orderID string, p *UpdatePayload) (*Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	p.Apply(o)

	updated, err := s.orders.Update(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("update order %q: %w", orderID, err)
	}
	return updated, nil
}

// Delete removes the order permanently, or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	return s.orders.Delete(ctx, orderID)
}

// ListByCustomer returns every order for the customer, unpaginated.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

// Summarize computes the aggregate view over all stored orders.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	return s.orders.Summarize(ctx)
}
