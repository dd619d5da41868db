/**
 * @description
 * This file contains the core business logic for the payout-service. The `Service`
 * struct orchestrates the withdrawal workflow: validating input, resolving the
 * destination account through the Paystack gateway, applying the beneficiary
 * name check, and submitting the transfer.
 *
 * Key features:
 * - A withdrawal is only executed if the resolved account holder name and the
 *   claimed beneficiary name pass the fuzzy match.
 * - Amounts arrive in decimal naira and are converted exactly once to integer
 *   kobo before touching the gateway.
 * - Gateway business rejections are surfaced verbatim; transport failures are
 *   wrapped and reported generically to the caller.
 *
 * @dependencies
 * - context, errors, fmt, log, strings: Standard Go libraries.
 * - github.com/shopspring/decimal: Exact decimal arithmetic for amounts.
 * - internal/domain, internal/store: For domain models and ledger access.
 * - pkg/paystackclient, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/payrelay/payout-service/internal/domain"
	"github.com/payrelay/payout-service/internal/store"
	"github.com/payrelay/payout-service/pkg/paystackclient"
	"github.com/payrelay/payout-service/pkg/rabbitmq"
)

var (
	ErrInvalidAmount         = errors.New("amount must be a positive number")
	ErrMissingAccountDetails = errors.New("account number and bank code are required")
	ErrMissingBeneficiary    = errors.New("beneficiary name is required")
	ErrNameMismatch          = errors.New("account name does not match the provided beneficiary name")
)

// TransferRejectedError is a terminal gateway rejection of a submitted
// transfer (e.g. insufficient balance). The gateway message is preserved
// verbatim for the caller; this is a business outcome, not a system error.
type TransferRejectedError struct {
	Message string
}

func (e *TransferRejectedError) Error() string {
	if e.Message == "" {
		return "transfer rejected by gateway"
	}
	return e.Message
}

// Gateway is the subset of the payment gateway client used by the service.
type Gateway interface {
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystackclient.ResolveResponse, error)
	Transfer(ctx context.Context, params paystackclient.TransferParams) (*paystackclient.TransferResult, error)
	ListBanks(ctx context.Context, currency string) ([]paystackclient.Bank, error)
}

// Service provides the core business logic for payouts.
type Service struct {
	repo          store.Repository
	gateway       Gateway
	eventProducer rabbitmq.Publisher
	refs          ReferenceGenerator
	currency      string
	narration     string
}

// NewService creates a new payout service instance.
func NewService(repo store.Repository, gateway Gateway, producer rabbitmq.Publisher, refs ReferenceGenerator, currency, narration string) *Service {
	if currency == "" {
		currency = "NGN"
	}
	if narration == "" {
		narration = "Wallet withdrawal"
	}
	return &Service{
		repo:          repo,
		gateway:       gateway,
		eventProducer: producer,
		refs:          refs,
		currency:      currency,
		narration:     narration,
	}
}

// LookupAccount resolves an account number + bank code to the account holder
// name via the gateway. An empty AccountName in the result means the gateway
// could not resolve a holder name.
func (s *Service) LookupAccount(ctx context.Context, accountNumber, bankCode string) (*domain.LookupResult, error) {
	if strings.TrimSpace(accountNumber) == "" || strings.TrimSpace(bankCode) == "" {
		return nil, ErrMissingAccountDetails
	}

	resolved, err := s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
	if err != nil {
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	return &domain.LookupResult{
		AccountName: resolved.AccountName,
		RawMessage:  resolved.Message,
	}, nil
}

// Withdraw runs the full withdrawal workflow: validate, resolve the account,
// verify the beneficiary name, then submit the transfer. No transfer is
// attempted when the lookup fails or the name check rejects.
func (s *Service) Withdraw(ctx context.Context, req domain.WithdrawalRequest) (*domain.TransferReceipt, error) {
	if err := validateWithdrawal(req); err != nil {
		return nil, err
	}

	resolved, err := s.gateway.ResolveAccount(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	// An unresolved name compares as the empty string, which never matches.
	if !NamesMatch(resolved.AccountName, req.BeneficiaryName) {
		log.Printf("level=info component=payout op=withdraw outcome=name_mismatch account=%s resolved=%q claimed=%q",
			req.AccountNumber, resolved.AccountName, req.BeneficiaryName)
		return nil, ErrNameMismatch
	}

	reference := s.refs.NewReference()
	result, err := s.gateway.Transfer(ctx, paystackclient.TransferParams{
		AmountKobo:      AmountToKobo(req.Amount),
		Reference:       reference,
		AccountNumber:   req.AccountNumber,
		BankCode:        req.BankCode,
		BeneficiaryName: req.BeneficiaryName,
		Currency:        s.currency,
		Narration:       s.narration,
	})
	if err != nil {
		var apiErr *paystackclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return nil, &TransferRejectedError{Message: apiErr.Message}
		}
		return nil, fmt.Errorf("transfer submission failed: %w", err)
	}

	if !transferAccepted(result.Status) {
		return nil, &TransferRejectedError{Message: result.Message}
	}

	log.Printf("level=info component=payout op=withdraw outcome=submitted reference=%s status=%s", result.Reference, result.Status)
	return &domain.TransferReceipt{Reference: result.Reference, Status: result.Status}, nil
}

// ListBanks proxies the gateway's bank directory.
func (s *Service) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	banks, err := s.gateway.ListBanks(ctx, s.currency)
	if err != nil {
		return nil, fmt.Errorf("bank directory fetch failed: %w", err)
	}

	out := make([]domain.Bank, 0, len(banks))
	for _, b := range banks {
		out = append(out, domain.Bank{Name: b.Name, Code: b.Code, Currency: b.Currency})
	}
	return out, nil
}

func validateWithdrawal(req domain.WithdrawalRequest) error {
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(req.AccountNumber) == "" || strings.TrimSpace(req.BankCode) == "" {
		return ErrMissingAccountDetails
	}
	if strings.TrimSpace(req.BeneficiaryName) == "" {
		return ErrMissingBeneficiary
	}
	return nil
}

// AmountToKobo converts a decimal naira amount to integer kobo. Rounding is
// to the nearest kobo, ties away from zero: 150.004 -> 15000, 150.005 -> 15001.
func AmountToKobo(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// transferAccepted reports whether a gateway transfer status counts as
// accepted. NIP transfers settle asynchronously, so "pending" and "otp" are
// accepted alongside "success"; the confirmation webhook carries the final
// state.
func transferAccepted(status string) bool {
	switch strings.ToLower(status) {
	case "success", "pending", "otp":
		return true
	default:
		return false
	}
}
