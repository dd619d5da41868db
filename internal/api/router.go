/**
 * @description
 * This file sets up the HTTP router for the payout-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies the
 * rate-limit and concurrency-gate middleware.
 *
 * @dependencies
 * - net/http, time: Standard Go libraries.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/payrelay/payout-service/internal/app"
)

// RouterConfig carries the throttling policy for the public endpoints.
type RouterConfig struct {
	Limiter        app.RateLimiter
	Gate           *app.WithdrawalGate
	GeneralLimit   int
	GeneralWindow  time.Duration
	WithdrawLimit  int
	WithdrawWindow time.Duration
	WebhookPath    string
}

// PayoutRoutes creates and returns the router for the payout service.
func PayoutRoutes(h *PayoutHandlers, wh *WebhookHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Gateway-originated traffic is authenticated by signature, not throttled.
	webhookPath := cfg.WebhookPath
	if strings.TrimSpace(webhookPath) == "" {
		webhookPath = "/webhooks/paystack"
	}
	r.Post(webhookPath, wh.ServeHTTP)

	// Client-facing endpoints share the general ceiling; withdrawal
	// submission additionally gets its own stricter window and the global
	// concurrency gate.
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(cfg.Limiter, "general", cfg.GeneralLimit, cfg.GeneralWindow))

		r.Post("/lookup", h.LookupHandler)
		r.Get("/banks", h.ListBanksHandler)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(cfg.Limiter, "withdraw", cfg.WithdrawLimit, cfg.WithdrawWindow))
			r.Use(ConcurrencyLimit(cfg.Gate))

			r.Post("/withdraw", h.WithdrawHandler)
		})
	})

	return r
}
