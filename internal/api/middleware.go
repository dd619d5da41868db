/**
 * @description
 * This file contains custom middleware for the HTTP router: the per-client
 * rolling-window rate limit and the global withdrawal concurrency gate. Both
 * run in front of the handlers so a throttled request never reaches the
 * orchestrator.
 *
 * @dependencies
 * - encoding/json, log, net, net/http, strconv, time: Standard Go libraries.
 * - internal/app: Rate limiter and concurrency gate.
 */

package api

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/payrelay/payout-service/internal/app"
)

// clientIdentity derives the rate-limit subject for a request: the X-API-Key
// header when the caller presents one, otherwise the remote IP.
func clientIdentity(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit bounds requests per client identity within a rolling window.
// A nil limiter disables the limit. Limiter backend errors fail open: a
// degraded Redis must not take the payout path down with it.
func RateLimit(limiter app.RateLimiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			subject := clientIdentity(r)
			count, retryAfter, err := limiter.Consume(r.Context(), scope, subject, limit, window)
			if err != nil {
				log.Printf("level=warn component=rate_limit scope=%s msg=\"limiter unavailable; allowing request\" err=%v", scope, err)
				next.ServeHTTP(w, r)
				return
			}

			if count > limit {
				log.Printf("level=warn component=rate_limit scope=%s outcome=throttled subject=%s count=%d limit=%d", scope, subject, count, limit)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeThrottled(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ConcurrencyLimit bounds the number of in-flight withdrawal requests across
// all clients. The permit is released in a defer so no outcome of the request
// (success, business failure, panic recovered upstream) can leak it.
func ConcurrencyLimit(gate *app.WithdrawalGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !gate.TryAcquire() {
				log.Printf("level=warn component=concurrency_gate outcome=rejected path=%s", r.URL.Path)
				writeThrottled(w, http.StatusServiceUnavailable, "Server busy, please retry shortly")
				return
			}
			defer gate.Release()

			next.ServeHTTP(w, r)
		})
	}
}

func writeThrottled(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}
