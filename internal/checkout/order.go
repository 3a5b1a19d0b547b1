package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"belleza-be/internal/apperror"
	"belleza-be/internal/logger"
	"belleza-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PendingKey holds the checkout form between attempts.
const PendingKey = "belleza-checkout"

// Form is what the shopper fills in at checkout.
type Form struct {
	Phone        string             `json:"phone"`
	FullName     string             `json:"fullName"`
	Email        string             `json:"email,omitempty"`
	DeliveryType order.DeliveryType `json:"deliveryType"`
	Address      string             `json:"address,omitempty"`
	City         string             `json:"city,omitempty"`
	Province     string             `json:"province,omitempty"`
	PostalCode   string             `json:"postalCode,omitempty"`
}

type pending struct {
	Form           Form   `json:"form"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type lineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	Title     string `json:"title"`
}

type orderRequest struct {
	Form
	Items []lineRequest `json:"items"`
}

func (c *Client) loadPending() (*pending, error) {
	raw, ok, err := c.store.Get(PendingKey)
	if err != nil || !ok {
		return nil, err
	}
	var p pending
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.L().Warn("discarding unreadable checkout form", zap.Error(err))
		return nil, c.store.Delete(PendingKey)
	}
	return &p, nil
}

func (c *Client) savePending(p pending) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.store.Set(PendingKey, b)
}

// SavedForm returns the form of the last unfinished checkout, if any.
func (c *Client) SavedForm() (*Form, error) {
	p, err := c.loadPending()
	if err != nil || p == nil {
		return nil, err
	}
	return &p.Form, nil
}

// PlaceOrder submits the current cart. The cart and the saved form are
// cleared only once the server accepts the order. A transport failure keeps
// the idempotency key so a retry cannot place the order twice.
func (c *Client) PlaceOrder(ctx context.Context, form Form) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("method", "PlaceOrder"),
	)

	snapshot, err := c.cart.Get()
	if err != nil {
		return nil, err
	}
	if len(snapshot.Items) == 0 {
		return nil, order.ErrItemsRequired
	}

	if strings.TrimSpace(form.Phone) == "" {
		if s, _ := c.sessions.Get(); s != nil {
			form.Phone = s.Phone
		}
	}

	prev, err := c.loadPending()
	if err != nil {
		return nil, err
	}
	key := uuid.NewString()
	if prev != nil && prev.IdempotencyKey != "" {
		key = prev.IdempotencyKey
	}
	if err := c.savePending(pending{Form: form, IdempotencyKey: key}); err != nil {
		return nil, err
	}

	req := orderRequest{Form: form}
	for _, it := range snapshot.Items {
		req.Items = append(req.Items, lineRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Title:     it.Title,
		})
	}

	var res struct {
		Order *order.Order `json:"order"`
	}
	err = c.do(ctx, http.MethodPost, "/api/orders/create", req, &res,
		map[string]string{"Idempotency-Key": key})
	if err != nil {
		var ae *apperror.Error
		if errors.As(err, &ae) {
			// The server answered, so nothing was placed under this key.
			if serr := c.savePending(pending{Form: form}); serr != nil {
				log.Warn("failed to save checkout form", zap.Error(serr))
			}
		}
		log.Info("order not placed", zap.Error(err))
		return nil, err
	}
	if res.Order == nil {
		return nil, fmt.Errorf("checkout: response carried no order")
	}

	if err := c.cart.Clear(); err != nil {
		log.Warn("failed to clear cart after order", zap.Error(err))
	}
	if err := c.store.Delete(PendingKey); err != nil {
		log.Warn("failed to clear checkout form", zap.Error(err))
	}

	log.Info("order placed", zap.String("order_id", res.Order.ID))
	return res.Order, nil
}
