package order

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// transitions lists the admin status changes allowed from each status.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type DeliveryType string

const (
	DeliveryMeetUp   DeliveryType = "MEET_UP"
	DeliveryShipping DeliveryType = "SHIPPING"
)

func (d DeliveryType) IsValid() bool {
	return d == DeliveryMeetUp || d == DeliveryShipping
}

type CustomerRef struct {
	ID    string  `json:"id"`
	Phone string  `json:"phone"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Order totals are integer minor currency units and exclude display tax.
type Order struct {
	ID           string       `json:"id"`
	CustomerID   string       `json:"customerId"`
	Status       Status       `json:"status"`
	DeliveryType DeliveryType `json:"deliveryType"`
	FullName     *string      `json:"fullName"`
	Address      *string      `json:"address"`
	City         *string      `json:"city"`
	Province     *string      `json:"province"`
	PostalCode   *string      `json:"postalCode"`
	TotalAmount  int64        `json:"totalAmount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Customer     *CustomerRef `json:"customer,omitempty"`
	Items        []Item       `json:"items"`
}

// Item captures the catalog price at purchase time.
type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// LineInput is one cart line as submitted. Price is what the shopper saw;
// when set it must equal the catalog price.
type LineInput struct {
	ProductID string
	Quantity  int
	Price     *int64
	Title     string
}

type ShippingInput struct {
	Address    string
	City       string
	Province   string
	PostalCode string
}

type PlaceOrderInput struct {
	Phone          string
	FullName       string
	Email          *string
	DeliveryType   DeliveryType
	Shipping       ShippingInput
	Items          []LineInput
	IdempotencyKey string
}

// CatalogEntry is the authoritative product state read inside the order
// transaction.
type CatalogEntry struct {
	ProductID string
	Title     string
	Price     int64
	Stock     int
	IsActive  bool
}

type ListFilter struct {
	Status     Status
	CustomerID string
	Limit      int
	Offset     int
}

type Stats struct {
	TotalProducts   int   `json:"totalProducts"`
	TotalCategories int   `json:"totalCategories"`
	TotalCustomers  int   `json:"totalCustomers"`
	TotalOrders     int   `json:"totalOrders"`
	PendingOrders   int   `json:"pendingOrders"`
	PaidOrders      int   `json:"paidOrders"`
	TotalRevenue    int64 `json:"totalRevenue"`
}

// OrderPlaced is published after an order commits.
type OrderPlaced struct {
	OrderID      string       `json:"orderId"`
	CustomerID   string       `json:"customerId"`
	TotalAmount  int64        `json:"totalAmount"`
	DeliveryType DeliveryType `json:"deliveryType"`
	Items        []Item       `json:"items"`
	PlacedAt     time.Time    `json:"placedAt"`
}
