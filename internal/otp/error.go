package otp

import "belleza-be/internal/apperror"

var (
	ErrPhoneRequired   = apperror.Validation("phone", "phone is required")
	ErrCodeRequired    = apperror.Validation("code", "code is required")
	ErrInvalidCode     = apperror.New(apperror.KindInvalidCode, "Invalid or expired code")
	ErrTooManyAttempts = apperror.New(apperror.KindTooManyAttempts, "too many attempts, request a new code later")
	ErrIssueFailed     = apperror.New(apperror.KindPersistence, "Failed to send code")
	ErrVerifyFailed    = apperror.New(apperror.KindPersistence, "Failed to verify code")
)
