// Package checkout drives the storefront flow against the HTTP API: phone
// verification, then order placement from the client-local cart.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"belleza-be/internal/apperror"
	"belleza-be/internal/cart"
	"belleza-be/internal/customer"
	"belleza-be/internal/logger"
	"belleza-be/internal/otp"
	"belleza-be/internal/session"
	"belleza-be/internal/storage"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store
	sessions   *session.Manager
	cart       *cart.Store
}

// NewClient keeps the session, the cart and any pending checkout form in store.
func NewClient(baseURL string, store storage.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		store:    store,
		sessions: session.NewManager(store, session.DefaultTTL),
		cart:     cart.NewStore(store),
	}
}

func (c *Client) Cart() *cart.Store          { return c.cart }
func (c *Client) Sessions() *session.Manager { return c.sessions }

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// statusError turns a non-2xx response into an *apperror.Error of the
// matching kind.
func statusError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		eb.Error = fmt.Sprintf("unexpected status %d", status)
	}

	kind := apperror.KindUnknown
	switch status {
	case http.StatusBadRequest:
		kind = apperror.KindValidation
	case http.StatusUnauthorized:
		kind = apperror.KindUnauthorized
	case http.StatusNotFound:
		kind = apperror.KindNotFound
	case http.StatusConflict:
		kind = apperror.KindConflict
	case http.StatusTooManyRequests:
		kind = apperror.KindTooManyAttempts
	}
	return &apperror.Error{Kind: kind, Field: eb.Field, Message: eb.Error}
}

// do sends a JSON request and decodes a 2xx response into out. Transport
// failures are returned unwrapped so callers can tell them from rejections.
func (c *Client) do(ctx context.Context, method, path string, in any, out any, headers map[string]string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("path", path),
	)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s, _ := c.sessions.Get(); s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return fmt.Errorf("checkout: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("checkout: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug("request rejected", zap.Int("status", resp.StatusCode))
		return statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("checkout: decode response: %w", err)
	}
	return nil
}

// SendCode asks the server to issue a verification code for phone.
func (c *Client) SendCode(ctx context.Context, phone string) (*otp.IssueResult, error) {
	var res otp.IssueResult
	err := c.do(ctx, http.MethodPost, "/api/auth/send-code", map[string]string{"phone": phone}, &res, nil)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type verifyResponse struct {
	Customer customer.Customer `json:"customer"`
	Token    string            `json:"token"`
}

// VerifyCode exchanges a code for a customer session and stores it locally.
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (*session.Session, error) {
	var res verifyResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-code",
		map[string]string{"phone": phone, "code": code}, &res, nil)
	if err != nil {
		return nil, err
	}

	s, err := c.sessions.Set(session.Session{
		CustomerID: res.Customer.ID,
		Phone:      res.Customer.Phone,
		Name:       res.Customer.Name,
		Email:      res.Customer.Email,
		Token:      res.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: store session: %w", err)
	}
	return &s, nil
}

// Logout drops the local session. The cart is kept.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}
