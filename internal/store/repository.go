/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * ledger access operations required by the payout-service. By defining an interface,
 * we decouple the webhook processing logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/payrelay/payout-service/internal/domain"
)

// Repository defines the set of methods for interacting with the ledger store.
type Repository interface {
	// FindUserByEmail looks up exactly one ledger user by email. Users are
	// never created by this service; a missing user yields ErrUserNotFound.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ApplyPaymentConfirmation applies the full ledger mutation for one
	// confirmed payment in a single database transaction: mark the user paid,
	// append the payment record, and when the user was referred, credit the
	// referrer's balance and append a referral entry. The referrer credit is
	// an atomic in-database increment, never a read-modify-write.
	ApplyPaymentConfirmation(ctx context.Context, params PaymentConfirmationParams) error
}

// PaymentConfirmationParams carries everything the store needs to record one
// confirmed payment. Referrer fields are ignored when ReferrerID is nil.
type PaymentConfirmationParams struct {
	UserID            uuid.UUID
	AmountKobo        int64
	AdminShareKobo    int64
	Reference         string
	ReferrerID        *uuid.UUID
	ReferredUserName  string
	ReferrerShareKobo int64
}
