/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains the SQL for the user ledger: users, payments, and referrals.
 *
 * Expected schema:
 *
 *   users(id uuid pk, email text unique, full_name text, paid boolean,
 *         balance_kobo bigint, referrer_id uuid null references users(id))
 *   payments(id uuid pk, user_id uuid references users(id), amount_kobo bigint,
 *            admin_share_kobo bigint, reference text unique, created_at timestamptz)
 *   referrals(id uuid pk, referrer_id uuid references users(id),
 *             referred_user_id uuid, referred_name text, earned_kobo bigint,
 *             created_at timestamptz)
 *
 * The payments.reference unique constraint makes webhook redelivery idempotent:
 * a replayed event inserts zero rows and the rest of the mutation is skipped.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payrelay/payout-service/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindUserByEmail retrieves a ledger user by email, case-insensitively.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, btrim(email), full_name, paid, balance_kobo, referrer_id
	          FROM users WHERE lower(btrim(email)) = lower(btrim($1))`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Paid, &user.BalanceKobo, &user.ReferrerID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ApplyPaymentConfirmation records one confirmed payment atomically. All
// statements run in a single transaction; the referrer balance update is an
// in-database increment so concurrent confirmations for the same referrer
// cannot lose writes.
func (r *PostgresRepository) ApplyPaymentConfirmation(ctx context.Context, params PaymentConfirmationParams) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	tag, err := tx.Exec(ctx,
		`INSERT INTO payments (id, user_id, amount_kobo, admin_share_kobo, reference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (reference) DO NOTHING`,
		uuid.New(), params.UserID, params.AmountKobo, params.AdminShareKobo, params.Reference, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Redelivered event: the payment was already recorded, nothing to do.
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET paid = TRUE WHERE id = $1`, params.UserID); err != nil {
		return fmt.Errorf("failed to mark user paid: %w", err)
	}

	if params.ReferrerID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE users SET balance_kobo = balance_kobo + $1 WHERE id = $2`,
			params.ReferrerShareKobo, *params.ReferrerID,
		); err != nil {
			return fmt.Errorf("failed to credit referrer balance: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO referrals (id, referrer_id, referred_user_id, referred_name, earned_kobo, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), *params.ReferrerID, params.UserID, params.ReferredUserName, params.ReferrerShareKobo, now,
		); err != nil {
			return fmt.Errorf("failed to append referral entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}
