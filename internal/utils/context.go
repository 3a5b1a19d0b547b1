package utils

import "context"

type contextKey string

const (
	CustomerIDKey    contextKey = "customer_id"
	CustomerPhoneKey contextKey = "customer_phone"
	AdminIDKey       contextKey = "admin_id"
)

type ctxKey string

const internalRequestKey ctxKey = "internal_request"

// SetCustomerContext sets the authenticated customer (called by middleware).
func SetCustomerContext(ctx context.Context, id, phone string) context.Context {
	ctx = context.WithValue(ctx, CustomerIDKey, id)
	ctx = context.WithValue(ctx, CustomerPhoneKey, phone)
	return ctx
}

func GetCustomerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CustomerIDKey).(string)
	return id, ok && id != ""
}

func GetCustomerPhoneFromContext(ctx context.Context) string {
	phone, _ := ctx.Value(CustomerPhoneKey).(string)
	return phone
}

func SetAdminContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, AdminIDKey, id)
}

func GetAdminIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AdminIDKey).(string)
	return id, ok && id != ""
}

// WithInternalRequest marks a request authenticated by the internal service key.
func WithInternalRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, internalRequestKey, true)
}

func IsInternalRequest(ctx context.Context) bool {
	v, _ := ctx.Value(internalRequestKey).(bool)
	return v
}
