package api

import (
	"net/http"

	"belleza-be/internal/auth"
	"belleza-be/internal/utils"
)

// AdminLogin handles POST /api/admin/login.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.admins.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setCookie(w, auth.AdminCookie, res.Session.Token, res.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     res.Session.Token,
		"expiresAt": res.Session.ExpiresAt,
		"admin":     res.Admin,
	})
}

// AdminLogout handles POST /api/admin/logout. It succeeds without a session.
func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.Logout(r.Context(), auth.ExtractAdminToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	h.clearCookie(w, auth.AdminCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// VerifyAdminToken handles POST /api/admin/verify-token behind RequireAdmin.
func (h *Handler) VerifyAdminToken(w http.ResponseWriter, r *http.Request) {
	id, _ := utils.GetAdminIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "adminId": id})
}

// Metrics handles GET /api/admin/metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}
