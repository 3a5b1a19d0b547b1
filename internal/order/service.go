package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"belleza-be/internal/apperror"
	"belleza-be/internal/customer"
	"belleza-be/internal/events"
	"belleza-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
	ListCustomerOrders(ctx context.Context, customerID string) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &service{repo: repo, publisher: publisher}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// buildParams validates the request before anything touches the store.
func buildParams(input PlaceOrderInput) (CreateParams, error) {
	params := CreateParams{
		Phone:        strings.TrimSpace(input.Phone),
		DeliveryType: input.DeliveryType,
	}

	if params.Phone == "" {
		return params, ErrPhoneRequired
	}
	if !params.DeliveryType.IsValid() {
		return params, ErrInvalidDeliveryType
	}

	lines, err := mergeLines(input.Items)
	if err != nil {
		return params, err
	}
	params.Lines = lines

	if params.DeliveryType == DeliveryShipping {
		s := ShippingInput{
			Address:    strings.TrimSpace(input.Shipping.Address),
			City:       strings.TrimSpace(input.Shipping.City),
			Province:   strings.TrimSpace(input.Shipping.Province),
			PostalCode: strings.TrimSpace(input.Shipping.PostalCode),
		}
		if s.Address == "" || s.City == "" || s.Province == "" || s.PostalCode == "" {
			return params, ErrShippingRequired
		}
		params.Shipping = &s
	}

	params.FullName = optional(input.FullName)
	params.Profile = customer.ProfileInput{Name: params.FullName}
	if input.Email != nil {
		params.Profile.Email = optional(*input.Email)
	}
	params.IdempotencyKey = optional(input.IdempotencyKey)

	return params, nil
}

// passThrough reports whether err should reach the caller unchanged.
func passThrough(err error) bool {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindConflict, apperror.KindNotFound:
		return true
	}
	return false
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)
	start := time.Now()

	params, err := buildParams(input)
	if err != nil {
		log.Info("invalid order request", zap.Error(err))
		return nil, err
	}

	if key := params.IdempotencyKey; key != nil {
		existing, err := s.repo.GetByIdempotencyKey(ctx, *key)
		if err == nil {
			log.Info("idempotent replay", zap.String("order_id", existing.ID))
			return replay(existing, params.Phone)
		}
		if !errors.Is(err, ErrOrderNotFound) {
			log.Error("failed to check idempotency key", zap.Error(err))
			return nil, apperror.Wrap(ErrOrderCreationFailed, err)
		}
	}

	o, err := s.repo.Create(ctx, params)
	if errors.Is(err, errDuplicateIdempotency) {
		// A concurrent request with the same key won the insert.
		o, err = s.repo.GetByIdempotencyKey(ctx, *params.IdempotencyKey)
		if err != nil {
			return nil, apperror.Wrap(ErrOrderCreationFailed, err)
		}
		return replay(o, params.Phone)
	}
	if err != nil {
		if passThrough(err) {
			return nil, err
		}
		log.Error("order creation failed", zap.Error(err))
		return nil, apperror.Wrap(ErrOrderCreationFailed, err)
	}

	s.publishPlaced(ctx, o)

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.Int64("total_amount", o.TotalAmount),
		zap.Int("items", len(o.Items)),
		zap.Duration("duration", time.Since(start)),
	)
	return o, nil
}

// replay hands back a previously placed order only to the phone that placed it.
func replay(o *Order, phone string) (*Order, error) {
	if o.Customer == nil || o.Customer.Phone != phone {
		return nil, ErrIdempotencyKeyReused
	}
	return o, nil
}

// publishPlaced is best effort; the order is already committed.
func (s *service) publishPlaced(ctx context.Context, o *Order) {
	evt := OrderPlaced{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		TotalAmount:  o.TotalAmount,
		DeliveryType: o.DeliveryType,
		Items:        o.Items,
		PlacedAt:     o.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.QueueOrderPlaced, evt); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func (s *service) storeErr(err error) error {
	if passThrough(err) {
		return err
	}
	return apperror.Wrap(ErrOrderStore, err)
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	} else if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return orders, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID string) ([]*Order, error) {
	if customerID == "" {
		return nil, apperror.New(apperror.KindUnauthorized, "customer session required")
	}
	return s.ListOrders(ctx, ListFilter{CustomerID: customerID})
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderStatus"),
	)

	if strings.TrimSpace(id) == "" {
		return nil, apperror.Validation("orderId", "Order ID and status required")
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if !passThrough(err) {
			log.Error("failed to update order status", zap.String("order_id", id), zap.Error(err))
		}
		return nil, s.storeErr(err)
	}
	return o, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return st, nil
}
