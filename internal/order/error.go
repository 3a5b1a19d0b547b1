package order

import "belleza-be/internal/apperror"

var (
	ErrPhoneRequired        = apperror.Validation("phone", "phone is required")
	ErrItemsRequired        = apperror.Validation("items", "at least one item is required")
	ErrInvalidQuantity      = apperror.Validation("items", "quantity must be at least 1")
	ErrQuantityTooLarge     = apperror.Validation("items", "quantity must be at most 10000")
	ErrProductIDRequired    = apperror.Validation("items", "productId is required")
	ErrInvalidDeliveryType  = apperror.Validation("deliveryType", "deliveryType must be MEET_UP or SHIPPING")
	ErrShippingRequired     = apperror.Validation("address", "address, city, province and postalCode are required for shipping")
	ErrInvalidStatus        = apperror.Validation("status", "Invalid status")
	ErrProductNotFound      = apperror.Validation("items", "product not found")
	ErrProductUnavailable   = apperror.Validation("items", "product is not available")
	ErrPriceChanged         = apperror.Validation("items", "price has changed, please review your cart")
	ErrOutOfStock           = apperror.New(apperror.KindConflict, "insufficient stock")
	ErrInvalidTransition    = apperror.New(apperror.KindConflict, "order status cannot change that way")
	ErrOrderNotFound        = apperror.NotFound("Order not found")
	ErrOrderCreationFailed  = apperror.New(apperror.KindPersistence, "Failed to create order")
	ErrOrderStore           = apperror.New(apperror.KindPersistence, "order store failure")
	ErrIdempotencyKeyReused = apperror.New(apperror.KindConflict, "idempotency key already used for another order")
	errDuplicateIdempotency = apperror.New(apperror.KindConflict, "duplicate idempotency key")
)

const idempotencyConstraint = "orders_idempotency_key_key"
