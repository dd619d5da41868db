/**
 * @description
 * This file contains the ledger-update logic for verified payment webhooks.
 * Signature verification happens at the HTTP layer; by the time an event
 * reaches ProcessPaymentEvent its authenticity is already established.
 *
 * Key behavior:
 * - Only a successful-charge event mutates the ledger; every other event type
 *   is acknowledged without side effects.
 * - An unknown payer email is acknowledged without mutation (logged for
 *   operational visibility) so the gateway does not retry indefinitely.
 * - The whole mutation (mark paid, payment record, referrer credit) is one
 *   atomic repository call.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - internal/domain, internal/store, pkg/rabbitmq.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/payrelay/payout-service/internal/domain"
	"github.com/payrelay/payout-service/internal/store"
	"github.com/payrelay/payout-service/pkg/rabbitmq"
)

// ChargeSucceededEvent is the gateway event type that confirms a payment.
const ChargeSucceededEvent = "charge.success"

// ProcessPaymentEvent applies a verified gateway event to the user ledger.
// A nil return means the event was handled (possibly as a no-op) and the
// webhook should be acknowledged; an error means processing failed after
// verification and the gateway may redeliver.
func (s *Service) ProcessPaymentEvent(ctx context.Context, event domain.PaymentWebhookEvent) error {
	if event.Event != ChargeSucceededEvent {
		log.Printf("level=info component=webhook outcome=ignored event=%s", event.Event)
		return nil
	}

	email := event.Data.CustomerEmail()
	if email == "" {
		log.Printf("level=warn component=webhook outcome=no_email reference=%s", event.Data.Reference)
		return nil
	}
	if event.Data.Amount <= 0 {
		log.Printf("level=warn component=webhook outcome=non_positive_amount reference=%s amount=%d", event.Data.Reference, event.Data.Amount)
		return nil
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Printf("level=warn component=webhook outcome=unknown_user email=%s reference=%s", email, event.Data.Reference)
			return nil
		}
		return fmt.Errorf("failed to look up user by email: %w", err)
	}

	amount := event.Data.Amount
	params := store.PaymentConfirmationParams{
		UserID:         user.ID,
		AmountKobo:     amount,
		AdminShareKobo: amount / 2,
		Reference:      event.Data.Reference,
	}
	if user.ReferrerID != nil {
		params.ReferrerID = user.ReferrerID
		params.ReferredUserName = user.FullName
		params.ReferrerShareKobo = amount / 2
	}

	if err := s.repo.ApplyPaymentConfirmation(ctx, params); err != nil {
		return fmt.Errorf("failed to apply payment confirmation: %w", err)
	}

	log.Printf("level=info component=webhook outcome=applied user_id=%s reference=%s amount_kobo=%d referred=%t",
		user.ID, event.Data.Reference, amount, user.ReferrerID != nil)

	if s.eventProducer != nil {
		confirmed := rabbitmq.PaymentConfirmedEvent{
			UserID:     user.ID,
			Reference:  event.Data.Reference,
			AmountKobo: amount,
			ReferrerID: user.ReferrerID,
			Timestamp:  time.Now().UTC(),
		}
		if err := s.eventProducer.PublishPaymentConfirmedEvent(ctx, confirmed); err != nil {
			// The ledger mutation is committed; a lost notification must not
			// fail the webhook and trigger a gateway redelivery.
			log.Printf("level=error component=webhook msg=\"payment.confirmed publish failed\" reference=%s err=%v", event.Data.Reference, err)
		}
	}

	return nil
}
