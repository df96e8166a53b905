package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

// Config holds rate limiting configuration for the role-switch surface.
// Switch storms from a misbehaving client are throttled per account, not
// queued.
type Config struct {
	Capacity   int     // Max burst per account
	RefillRate float64 // Requests per second per account
	BucketTTL  time.Duration
}

// DefaultConfig allows 10 switches per minute with a burst of 5
func DefaultConfig() *Config {
	return &Config{
		Capacity:   5,
		RefillRate: 10.0 / 60.0,
		BucketTTL:  1 * time.Hour,
	}
}

// Middleware throttles requests per authenticated account
type Middleware struct {
	config  *Config
	limiter *RateLimiter
}

// NewMiddleware creates a new per-account rate limiting middleware
func NewMiddleware(config *Config) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	return &Middleware{
		config:  config,
		limiter: NewRateLimiter(config.Capacity, config.RefillRate, config.BucketTTL),
	}
}

// Handler returns the rate limiting middleware handler. Unauthenticated
// requests pass through; the auth middleware behind it rejects them anyway.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := getAccountID(r)
		if accountID != "" && !m.limiter.Allow(accountID) {
			m.rateLimitExceeded(w, r, accountID)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitExceeded handles rate limit exceeded responses
func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, accountID string) {
	slog.Warn("Rate limit exceeded",
		"account_id", accountID,
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)

	fmt.Fprint(w, `{"error": "rate_limit_exceeded", "message": "Too many requests. Please try again later."}`)
}

// getAccountID extracts the account ID from JWT claims in the request context
func getAccountID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || claims == nil {
		return ""
	}

	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if accountID, ok := claims["account_id"].(string); ok && accountID != "" {
		return accountID
	}

	return ""
}
