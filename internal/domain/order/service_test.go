package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo is an in-memory Repository for service tests.
type mockRepo struct {
	byOrderID map[string]*Order
	nextID    int64

	insertErr error
	getErr    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{byOrderID: make(map[string]*Order)}
}

func (m *mockRepo) Insert(_ context.Context, o *Order) (*Order, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if _, ok := m.byOrderID[o.OrderID]; ok {
		return nil, ErrDuplicateID
	}
	m.nextID++
	stored := *o
	stored.ID = m.nextID
	now := time.Now().UTC()
	if stored.OrderDate.IsZero() {
		stored.OrderDate = now
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.byOrderID[o.OrderID] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockRepo) GetByOrderID(_ context.Context, orderID string) (*Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.byOrderID[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter) ([]Order, error) {
	out := []Order{}
	for _, o := range m.byOrderID {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, o *Order) (*Order, error) {
	stored, ok := m.byOrderID[o.OrderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.ID = stored.ID
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	m.byOrderID[o.OrderID] = &cp
	out := cp
	return &out, nil
}

func (m *mockRepo) Delete(_ context.Context, orderID string) error {
	if _, ok := m.byOrderID[orderID]; !ok {
		return ErrNotFound
	}
	delete(m.byOrderID, orderID)
	return nil
}

func (m *mockRepo) ListByCustomer(_ context.Context, customerID string) ([]Order, error) {
	out := []Order{}
	for _, o := range m.byOrderID {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockRepo) Summarize(_ context.Context) (*Summary, error) {
	return &Summary{
		TotalOrders:   int64(len(m.byOrderID)),
		TotalRevenue:  []CurrencyTotal{},
		RevenuePerDay: []DailyRevenue{},
	}, nil
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns system fields", func(t *testing.T) {
		svc := NewService(newMockRepo())

		created, err := svc.Create(ctx, validCreatePayload())
		require.NoError(t, err)

		assert.NotZero(t, created.ID)
		assert.Equal(t, "ORD-2025-001", created.OrderID)
		assert.Equal(t, "CUST-123", created.CustomerID)
		assert.Equal(t, int64(25990), created.TotalAmount)
		assert.Equal(t, "ISK", created.Currency)
		assert.Equal(t, StatusPending, created.Status)
		assert.False(t, created.OrderDate.IsZero())
		assert.False(t, created.CreatedAt.IsZero())
		assert.False(t, created.UpdatedAt.IsZero())
	})

	t.Run("normalizes before storing", func(t *testing.T) {
		svc := NewService(newMockRepo())

		p := validCreatePayload()
		p.OrderID = "  ORD-X  "
		p.Currency = "usd"
		p.Status = ""

		created, err := svc.Create(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "ORD-X", created.OrderID)
		assert.Equal(t, "USD", created.Currency)
		assert.Equal(t, StatusPending, created.Status)
	})

	t.Run("keeps explicit order date", func(t *testing.T) {
		svc := NewService(newMockRepo())

		when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		p := validCreatePayload()
		p.OrderDate = &when

		created, err := svc.Create(ctx, p)
		require.NoError(t, err)
		assert.True(t, created.OrderDate.Equal(when))
	})

	t.Run("duplicate order_id leaves first record intact", func(t *testing.T) {
		repo := newMockRepo()
		svc := NewService(repo)

		first, err := svc.Create(ctx, validCreatePayload())
		require.NoError(t, err)

		dup := validCreatePayload()
		dup.CustomerID = "CUST-OTHER"
		_, err = svc.Create(ctx, dup)
		require.ErrorIs(t, err, ErrDuplicateID)

		stored, err := svc.Get(ctx, first.OrderID)
		require.NoError(t, err)
		assert.Equal(t, *first, *stored)
	})

	t.Run("race past the pre-check still surfaces duplicate", func(t *testing.T) {
		// Repository reports no existing row, then rejects the insert the way
		// the unique constraint would for a concurrent create.
		repo := newMockRepo()
		repo.getErr = ErrNotFound
		repo.insertErr = ErrDuplicateID
		svc := NewService(repo)

		_, err := svc.Create(ctx, validCreatePayload())
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("validation failure never touches the store", func(t *testing.T) {
		repo := newMockRepo()
		repo.getErr = errors.New("store must not be called")
		svc := NewService(repo)

		p := validCreatePayload()
		p.TotalAmount = -1
		_, err := svc.Create(ctx, p)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, repo.byOrderID)
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	stPtr := func(s Status) *Status { return &s }
	intPtr := func(n int64) *int64 { return &n }

	t.Run("partial update changes only supplied fields", func(t *testing.T) {
		svc := NewService(newMockRepo())
		created, err := svc.Create(ctx, validCreatePayload())
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.OrderID, &UpdatePayload{Status: stPtr(StatusCompleted)})
		require.NoError(t, err)

		assert.Equal(t, StatusCompleted, updated.Status)
		assert.Equal(t, created.CustomerID, updated.CustomerID)
		assert.Equal(t, created.TotalAmount, updated.TotalAmount)
		assert.Equal(t, created.Currency, updated.Currency)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := NewService(newMockRepo())
		_, err := svc.Update(ctx, "NOPE", &UpdatePayload{Status: stPtr(StatusShipped)})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid partial payload", func(t *testing.T) {
		svc := NewService(newMockRepo())
		_, err := svc.Update(ctx, "ORD-2025-001", &UpdatePayload{TotalAmount: intPtr(-10)})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestServiceDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepo())

	created, err := svc.Create(ctx, validCreatePayload())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.OrderID))

	_, err = svc.Get(ctx, created.OrderID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.OrderID), ErrNotFound)
}

func TestServiceListZeroLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepo())

	_, err := svc.Create(ctx, validCreatePayload())
	require.NoError(t, err)

	out, err := svc.List(ctx, ListFilter{Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}
