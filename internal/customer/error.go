package customer

import "belleza-be/internal/apperror"

var (
	ErrPhoneRequired    = apperror.Validation("phone", "phone is required")
	ErrCustomerNotFound = apperror.NotFound("customer not found")
	ErrCustomerStore    = apperror.New(apperror.KindPersistence, "customer store failure")
)
