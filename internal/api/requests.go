package api

import (
	"time"

	"belleza-be/internal/order"
	"belleza-be/internal/product"
	"belleza-be/internal/utils"
)

type SendCodeRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// SendCodeResponse carries the code only when the server exposes it.
type SendCodeResponse struct {
	Code      string    `json:"code,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

type VerifyCodeRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type ProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=10000"`
	Price     *int64 `json:"price" validate:"omitempty,min=0"`
	Title     string `json:"title"`
}

type CreateOrderRequest struct {
	Phone          string             `json:"phone" validate:"required"`
	FullName       string             `json:"fullName" validate:"max=120"`
	Email          string             `json:"email" validate:"omitempty,email"`
	DeliveryType   string             `json:"deliveryType" validate:"required,oneof=MEET_UP SHIPPING"`
	Address        string             `json:"address"`
	City           string             `json:"city"`
	Province       string             `json:"province"`
	PostalCode     string             `json:"postalCode"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey string             `json:"idempotencyKey" validate:"max=128"`
}

func (req CreateOrderRequest) toInput() order.PlaceOrderInput {
	in := order.PlaceOrderInput{
		Phone:        req.Phone,
		FullName:     req.FullName,
		DeliveryType: order.DeliveryType(req.DeliveryType),
		Shipping: order.ShippingInput{
			Address:    req.Address,
			City:       req.City,
			Province:   req.Province,
			PostalCode: req.PostalCode,
		},
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Email != "" {
		in.Email = utils.StrPtr(req.Email)
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, order.LineInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Title:     it.Title,
		})
	}
	return in
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProductRequest struct {
	Title       string   `json:"title" validate:"required,min=2"`
	Description *string  `json:"description"`
	Price       int64    `json:"price" validate:"min=0"`
	Stock       int      `json:"stock" validate:"min=0"`
	CategoryID  *string  `json:"categoryId"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	IsActive    *bool    `json:"isActive"`
}

func (req ProductRequest) toInput() product.CreateInput {
	return product.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		IsActive:    req.IsActive,
	}
}

type ProductUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=2"`
	Description *string  `json:"description"`
	Price       *int64   `json:"price" validate:"omitempty,min=0"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	CategoryID  *string  `json:"categoryId"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	IsActive    *bool    `json:"isActive"`
}

func (req ProductUpdateRequest) toInput() product.UpdateInput {
	return product.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		IsActive:    req.IsActive,
	}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

type SlugRequest struct {
	Title     string `json:"title" validate:"required"`
	ExcludeID string `json:"excludeId"`
	Kind      string `json:"kind" validate:"omitempty,oneof=product category"`
}
