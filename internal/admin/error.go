package admin

import "belleza-be/internal/apperror"

var (
	ErrCredentialsRequired = apperror.Validation("email", "email and password are required")
	ErrInvalidCredentials  = apperror.New(apperror.KindUnauthorized, "Invalid email or password")
	ErrSessionInvalid      = apperror.New(apperror.KindUnauthorized, "Unauthorized")
	ErrAdminNotFound       = apperror.NotFound("admin not found")
	ErrAdminStore          = apperror.New(apperror.KindPersistence, "admin store failure")
)
