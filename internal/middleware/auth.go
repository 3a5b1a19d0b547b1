package middleware

import (
	"context"
	"net/http"

	"belleza-be/internal/admin"
	"belleza-be/internal/apperror"
	"belleza-be/internal/auth"
	"belleza-be/internal/logger"
	"belleza-be/internal/utils"

	"go.uber.org/zap"
)

type CustomerTokenParser interface {
	ParseCustomerToken(token string) (*auth.CustomerClaims, error)
}

type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*admin.Admin, error)
}

// CustomerAuth attaches the customer from a valid access token. Requests with
// a missing or bad token continue anonymously; RequireCustomer guards the
// routes that need one.
func CustomerAuth(tokens CustomerTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ParseCustomerToken(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("ignoring customer token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetCustomerContext(r.Context(), claims.CustomerID, claims.Phone)
			ctx = logger.WithFields(ctx, zap.String("customer_id", claims.CustomerID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetCustomerIDFromContext(r.Context()); !ok {
			utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin checks the admin session cookie or bearer token against the
// session store.
func RequireAdmin(admins AdminAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, err := admins.Authenticate(r.Context(), auth.ExtractAdminToken(r))
			if err != nil {
				log := logger.FromCtx(r.Context())
				if apperror.HTTPStatus(err) == http.StatusUnauthorized {
					log.Debug("admin session rejected")
				} else {
					log.Error("admin session check failed", zap.Error(err))
				}
				utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetAdminContext(r.Context(), a.ID)
			ctx = logger.WithFields(ctx, zap.String("admin_id", a.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
