/**
 * @description
 * This file defines the domain models for payment-confirmation webhooks delivered
 * by the Paystack gateway, plus the ledger entities those webhooks mutate.
 *
 * @notes
 * - Webhook authenticity is established only by the HMAC signature over the raw
 *   request body, never by the payload schema. The structs here are deliberately
 *   tolerant: gateway payloads have carried the customer email both at the top of
 *   `data` and nested under `data.customer` across API revisions.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentWebhookEvent is the gateway's event envelope.
type PaymentWebhookEvent struct {
	Event string             `json:"event"`
	Data  PaymentWebhookData `json:"data"`
}

// PaymentWebhookData carries the transaction details of a payment event.
// Amount is in kobo (integer minor units).
type PaymentWebhookData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Email     string          `json:"email"`
	Customer  WebhookCustomer `json:"customer"`
}

// WebhookCustomer is the nested customer block of newer gateway payloads.
type WebhookCustomer struct {
	Email string `json:"email"`
}

// CustomerEmail returns the payer email, preferring the flat `data.email`
// field and falling back to `data.customer.email`.
func (d PaymentWebhookData) CustomerEmail() string {
	if d.Email != "" {
		return d.Email
	}
	return d.Customer.Email
}

// User is a ledger account holder. Users are never created by this service;
// they must pre-exist and are matched by email.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Paid        bool       `json:"paid"`
	BalanceKobo int64      `json:"balance_kobo"`
	ReferrerID  *uuid.UUID `json:"referrer_id,omitempty"`
}

// PaymentRecord is the append-only ledger row written once per processed
// payment event.
type PaymentRecord struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	AmountKobo     int64     `json:"amount_kobo"`
	AdminShareKobo int64     `json:"admin_share_kobo"`
	Reference      string    `json:"reference"`
	CreatedAt      time.Time `json:"created_at"`
}

// Referral is one entry of a referrer's referral history.
type Referral struct {
	ID             uuid.UUID `json:"id"`
	ReferrerID     uuid.UUID `json:"referrer_id"`
	ReferredUserID uuid.UUID `json:"referred_user_id"`
	ReferredName   string    `json:"referred_name"`
	EarnedKobo     int64     `json:"earned_kobo"`
	CreatedAt      time.Time `json:"created_at"`
}
