package api

import (
	"net/http"
	"time"

	"belleza-be/internal/apperror"
	"belleza-be/internal/auth"
	"belleza-be/internal/customer"
	"belleza-be/internal/metrics"
	"belleza-be/internal/order"
	"belleza-be/internal/utils"
)

// SendCode handles POST /api/auth/send-code.
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req SendCodeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.otp.Issue(r.Context(), req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.Counter(metrics.OTPIssued).Inc()

	writeJSON(w, http.StatusOK, SendCodeResponse{
		Code:      res.Code,
		ExpiresAt: res.ExpiresAt,
		Message:   "Code sent successfully",
	})
}

// VerifyCode handles POST /api/auth/verify-code. On success the customer gets
// an access token, also set as an HttpOnly cookie.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.otp.Verify(r.Context(), req.Phone, req.Code)
	if err != nil {
		if k := apperror.KindOf(err); k == apperror.KindInvalidCode || k == apperror.KindTooManyAttempts {
			h.metrics.Counter(metrics.OTPRejected).Inc()
		}
		writeError(w, r, err)
		return
	}
	h.metrics.Counter(metrics.OTPVerified).Inc()

	token, expiresAt, err := h.tokens.IssueCustomerToken(c.ID, c.Phone)
	if err != nil {
		writeError(w, r, apperror.Persistence("Verification failed", err))
		return
	}

	h.setCookie(w, auth.CustomerCookie, token, expiresAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"customer":  c,
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// Me handles GET /api/customers/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := utils.GetCustomerIDFromContext(r.Context())

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateMe handles PUT /api/customers/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, _ := utils.GetCustomerIDFromContext(r.Context())
	c, err := h.customers.UpdateProfile(r.Context(), id, customer.ProfileInput{
		Name:  utils.TrimmedPtr(req.Name),
		Email: utils.TrimmedPtr(req.Email),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// MyOrders handles GET /api/orders/mine.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := utils.GetCustomerIDFromContext(r.Context())

	orders, err := h.orders.ListCustomerOrders(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
