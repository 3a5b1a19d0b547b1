package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"belleza-be/internal/apperror"
	"belleza-be/internal/logger"
	"belleza-be/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidBody = apperror.Validation("", "Invalid request body")

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperror.Wrap(errInvalidBody, err)
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Wrap(errInvalidBody, err)
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	return apperror.Validation(field, validationMessage(fe))
}

// fieldPath drops the struct name, so "CreateOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s entries", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, fe.Param())
	case "email":
		return name + " must be a valid email"
	case "url":
		return name + " must be a valid URL"
	default:
		return name + " is invalid"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	utils.WriteJSON(w, code, v)
}

// writeError maps err onto its HTTP status. Server-side failures are logged
// with their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	log := logger.FromCtx(r.Context())

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	msg := apperror.PublicMessage(err)
	if status >= http.StatusInternalServerError {
		// Domain persistence sentinels carry a safe message of their own.
		var e *apperror.Error
		if errors.As(err, &e) && e.Kind == apperror.KindPersistence {
			msg = e.Message
		}
	}
	utils.WriteFieldError(w, msg, apperror.FieldOf(err), status)
}
