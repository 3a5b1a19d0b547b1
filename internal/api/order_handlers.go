package api

import (
	"net/http"
	"strconv"
	"strings"

	"belleza-be/internal/apperror"
	"belleza-be/internal/metrics"
	"belleza-be/internal/order"

	"github.com/go-chi/chi/v5"
)

const IdempotencyHeader = "Idempotency-Key"

// CreateOrder handles POST /api/orders/create.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	timer := metrics.StartTimer()

	var req CreateOrderRequest
	if err := decode(r, &req); err != nil {
		h.metrics.Counter(metrics.OrdersRejected).Inc()
		writeError(w, r, err)
		return
	}
	if key := strings.TrimSpace(r.Header.Get(IdempotencyHeader)); key != "" {
		req.IdempotencyKey = key
	}

	o, err := h.orders.PlaceOrder(r.Context(), req.toInput())
	if err != nil {
		if apperror.HTTPStatus(err) >= http.StatusInternalServerError {
			h.metrics.Counter(metrics.OrdersFailed).Inc()
		} else {
			h.metrics.Counter(metrics.OrdersRejected).Inc()
		}
		writeError(w, r, err)
		return
	}

	h.metrics.Counter(metrics.OrdersPlaced).Inc()
	h.metrics.ObserveMs(metrics.OrderLatencyMs, timer)
	writeJSON(w, http.StatusOK, map[string]any{"order": o})
}

// ListOrders handles GET /api/admin/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := order.ListFilter{
		Status:     order.Status(strings.ToUpper(q.Get("status"))),
		CustomerID: q.Get("customerId"),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		writeError(w, r, err)
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/admin/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// UpdateOrderStatus handles PUT /api/admin/orders/update-status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), req.OrderID, order.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Stats handles GET /api/admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.orders.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.Validation(field, field+" must be a non-negative integer")
	}
	return n, nil
}
