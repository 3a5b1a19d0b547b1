package otp

import "time"

const (
	DefaultTTL         = 10 * time.Minute
	DefaultMaxAttempts = 5
)

// Record is one issued code. Several may be live for the same phone.
type Record struct {
	ID        string
	Phone     string
	Code      string
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IssueResult is returned to the caller of Issue. Code is empty unless the
// service runs with ExposeCode.
type IssueResult struct {
	Code      string    `json:"code,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Options struct {
	TTL         time.Duration
	MaxAttempts int
	ExposeCode  bool
}
