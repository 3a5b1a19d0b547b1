package utils

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TrimmedPtr returns nil for a nil or blank string.
func TrimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, errorBody{Error: message})
}

func WriteFieldError(w http.ResponseWriter, message, field string, code int) {
	WriteJSON(w, code, errorBody{Error: message, Field: field})
}

// ClientIP is the remote host without port.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
