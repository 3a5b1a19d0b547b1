package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"belleza-be/internal/apperror"
	"belleza-be/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, params CreateParams) (*Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Stats(ctx context.Context) (*Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error {
	return errors.New("broker down")
}

// --- Tests ---

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		Phone:        " 08123 ",
		FullName:     "Ana",
		DeliveryType: DeliveryMeetUp,
		Items: []LineInput{
			{ProductID: "p1", Quantity: 1, Price: price(2990)},
			{ProductID: "p2", Quantity: 2, Price: price(1890)},
		},
	}
}

func placedOrder() *Order {
	return &Order{
		ID:           "o1",
		CustomerID:   "c1",
		Status:       StatusPending,
		DeliveryType: DeliveryMeetUp,
		TotalAmount:  6770,
		CreatedAt:    time.Now(),
		Customer:     &CustomerRef{ID: "c1", Phone: "08123"},
		Items: []Item{
			{ID: "i1", OrderID: "o1", ProductID: "p1", Quantity: 1, Price: 2990},
			{ID: "i2", OrderID: "o1", ProductID: "p2", Quantity: 2, Price: 1890},
		},
	}
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		pub := &events.MemoryPublisher{}
		svc := NewService(repo, pub)

		repo.On("Create", ctx, mock.MatchedBy(func(p CreateParams) bool {
			return p.Phone == "08123" &&
				p.Shipping == nil &&
				p.IdempotencyKey == nil &&
				p.Profile.Name != nil && *p.Profile.Name == "Ana" &&
				p.FullName != nil && *p.FullName == "Ana" &&
				p.Profile.Email == nil &&
				len(p.Lines) == 2
		})).Return(placedOrder(), nil)

		o, err := svc.PlaceOrder(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, int64(6770), o.TotalAmount)

		msgs := pub.Messages(events.QueueOrderPlaced)
		require.Len(t, msgs, 1)
		evt := msgs[0].Payload.(OrderPlaced)
		assert.Equal(t, "o1", evt.OrderID)
		assert.Equal(t, int64(6770), evt.TotalAmount)
		repo.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		in := validInput()
		in.Phone = "  "
		_, err := svc.PlaceOrder(ctx, in)
		assert.Equal(t, ErrPhoneRequired, err)

		in = validInput()
		in.DeliveryType = "DRONE"
		_, err = svc.PlaceOrder(ctx, in)
		assert.Equal(t, ErrInvalidDeliveryType, err)

		in = validInput()
		in.Items = nil
		_, err = svc.PlaceOrder(ctx, in)
		assert.Equal(t, ErrItemsRequired, err)

		in = validInput()
		in.DeliveryType = DeliveryShipping
		in.Shipping = ShippingInput{Address: "Jl. Mawar 1", City: "Bandung"}
		_, err = svc.PlaceOrder(ctx, in)
		assert.Equal(t, ErrShippingRequired, err)
		assert.Equal(t, 400, apperror.HTTPStatus(err))

		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Shipping fields passed through", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		in := validInput()
		in.DeliveryType = DeliveryShipping
		in.Shipping = ShippingInput{Address: "Jl. Mawar 1", City: "Bandung", Province: "Jabar", PostalCode: "40111"}
		email := "ana@mail.com"
		in.Email = &email

		repo.On("Create", ctx, mock.MatchedBy(func(p CreateParams) bool {
			return p.Shipping != nil && p.Shipping.PostalCode == "40111" &&
				p.Profile.Email != nil && *p.Profile.Email == email
		})).Return(placedOrder(), nil)

		_, err := svc.PlaceOrder(ctx, in)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Idempotent replay skips create", func(t *testing.T) {
		repo := new(MockRepository)
		pub := &events.MemoryPublisher{}
		svc := NewService(repo, pub)

		in := validInput()
		in.IdempotencyKey = "idem-1"
		repo.On("GetByIdempotencyKey", ctx, "idem-1").Return(placedOrder(), nil)

		o, err := svc.PlaceOrder(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
		assert.Empty(t, pub.Messages(events.QueueOrderPlaced))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Replay for another phone is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		in := validInput()
		in.Phone = "08999"
		in.IdempotencyKey = "idem-1"
		repo.On("GetByIdempotencyKey", ctx, "idem-1").Return(placedOrder(), nil)

		o, err := svc.PlaceOrder(ctx, in)
		assert.Nil(t, o)
		assert.Equal(t, ErrIdempotencyKeyReused, err)
		assert.Equal(t, 409, apperror.HTTPStatus(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent duplicate for another phone is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		in := validInput()
		in.Phone = "08999"
		in.IdempotencyKey = "idem-1"
		repo.On("GetByIdempotencyKey", ctx, "idem-1").Return(nil, ErrOrderNotFound).Once()
		repo.On("Create", ctx, mock.Anything).Return(nil, errDuplicateIdempotency)
		repo.On("GetByIdempotencyKey", ctx, "idem-1").Return(placedOrder(), nil).Once()

		_, err := svc.PlaceOrder(ctx, in)
		assert.Equal(t, ErrIdempotencyKeyReused, err)
	})

	t.Run("Concurrent duplicate returns winner", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		in := validInput()
		in.IdempotencyKey = "idem-1"
		repo.On("GetByIdempotencyKey", ctx, "idem-1").Return(nil, ErrOrderNotFound).Once()
		repo.On("Create", ctx, mock.Anything).Return(nil, errDuplicateIdempotency)
		repo.On("GetByIdempotencyKey", ctx, "idem-1").Return(placedOrder(), nil).Once()

		o, err := svc.PlaceOrder(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Out of stock passes through", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("Create", ctx, mock.Anything).Return(nil, ErrOutOfStock)

		_, err := svc.PlaceOrder(ctx, validInput())
		assert.Equal(t, ErrOutOfStock, err)
		assert.Equal(t, 409, apperror.HTTPStatus(err))
	})

	t.Run("Store failure is generic", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := svc.PlaceOrder(ctx, validInput())
		assert.True(t, errors.Is(err, ErrOrderCreationFailed))
		assert.Equal(t, 500, apperror.HTTPStatus(err))
		assert.Equal(t, "internal server error", apperror.PublicMessage(err))
	})

	t.Run("Publish failure does not fail order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, failingPublisher{})

		repo.On("Create", ctx, mock.Anything).Return(placedOrder(), nil)

		o, err := svc.PlaceOrder(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
	})
}

func TestService_ListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("Clamps limit", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("List", ctx, ListFilter{Limit: 100}).Return([]*Order{}, nil)

		_, err := svc.ListOrders(ctx, ListFilter{Limit: 1000, Offset: -5})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid status", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil)
		_, err := svc.ListOrders(ctx, ListFilter{Status: "SHIPPED"})
		assert.Equal(t, ErrInvalidStatus, err)
	})

	t.Run("Customer orders", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("List", ctx, ListFilter{CustomerID: "c1"}).Return([]*Order{placedOrder()}, nil)

		orders, err := svc.ListCustomerOrders(ctx, "c1")
		require.NoError(t, err)
		assert.Len(t, orders, 1)

		_, err = svc.ListCustomerOrders(ctx, "")
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	})

	t.Run("Store error wrapped", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("List", ctx, mock.Anything).Return(nil, errors.New("db error"))

		_, err := svc.ListOrders(ctx, ListFilter{})
		assert.True(t, errors.Is(err, ErrOrderStore))
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		paid := placedOrder()
		paid.Status = StatusPaid
		repo.On("UpdateStatus", ctx, "o1", StatusPaid).Return(paid, nil)

		o, err := svc.UpdateStatus(ctx, "o1", StatusPaid)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, o.Status)
	})

	t.Run("Invalid status", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		_, err := svc.UpdateStatus(ctx, "o1", "REFUNDED")
		assert.Equal(t, ErrInvalidStatus, err)

		_, err = svc.UpdateStatus(ctx, "", StatusPaid)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Transition rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)

		repo.On("UpdateStatus", ctx, "o1", StatusPending).Return(nil, ErrInvalidTransition)

		_, err := svc.UpdateStatus(ctx, "o1", StatusPending)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, 409, apperror.HTTPStatus(err))
	})
}

func TestService_GetOrderAndStats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	repo.On("GetByID", ctx, "missing").Return(nil, ErrOrderNotFound)
	repo.On("Stats", ctx).Return(&Stats{TotalOrders: 3}, nil)

	_, err := svc.GetOrder(ctx, "missing")
	assert.Equal(t, ErrOrderNotFound, err)

	s, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalOrders)
}
