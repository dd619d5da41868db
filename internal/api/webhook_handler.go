/**
 * @description
 * This file contains the HTTP handler for processing incoming payment webhooks
 * from Paystack. It acts as the entry point for all asynchronous payment
 * confirmations from the gateway.
 *
 * Key features:
 * - Security: the HMAC-SHA512 signature is verified over the exact raw request
 *   body bytes before anything else happens; re-serializing the JSON would
 *   drift on whitespace/key order and break signatures.
 * - A signature mismatch is rejected before any ledger access occurs.
 * - The happy path always acknowledges with 200 so the gateway does not retry
 *   indefinitely; a post-verification failure returns 500 and lets the
 *   gateway's own retry policy redeliver.
 *
 * @dependencies
 * - crypto/hmac, crypto/sha512, encoding/hex: For webhook signature validation.
 * - encoding/json, io, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain: Event processing and models.
 */
package api

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/payrelay/payout-service/internal/app"
	"github.com/payrelay/payout-service/internal/domain"
)

// SignatureHeader carries the gateway's HMAC signature of the request body.
const SignatureHeader = "x-paystack-signature"

// WebhookHandler processes incoming payment webhooks.
type WebhookHandler struct {
	service *app.Service
	secret  string
}

// NewWebhookHandler creates a new handler for the webhook endpoint.
func NewWebhookHandler(service *app.Service, secret string) *WebhookHandler {
	return &WebhookHandler{service: service, secret: secret}
}

// ServeHTTP implements the http.Handler interface.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("level=warn component=webhook outcome=reject reason=body_read_failed err=%v", err)
		http.Error(w, "Cannot read request body", http.StatusBadRequest)
		return
	}

	if !h.isValidSignature(r.Header.Get(SignatureHeader), body) {
		log.Printf("level=warn component=webhook outcome=reject reason=invalid_signature remote=%s", r.RemoteAddr)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	var event domain.PaymentWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("level=warn component=webhook outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if err := h.service.ProcessPaymentEvent(r.Context(), event); err != nil {
		log.Printf("level=error component=webhook outcome=failed event=%s reference=%s err=%v", event.Event, event.Data.Reference, err)
		http.Error(w, "Internal server error during event processing", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Webhook received"))
}

// isValidSignature verifies the HMAC-SHA512 hex signature, computed over the
// exact bytes received, in constant time.
func (h *WebhookHandler) isValidSignature(signatureHeader string, body []byte) bool {
	if h.secret == "" {
		return false
	}

	provided := strings.ToLower(strings.TrimSpace(signatureHeader))
	if provided == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}
