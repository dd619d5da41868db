/**
 * @description
 * This file defines the core domain models for the payout-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are handled as `int64` in the smallest currency unit (kobo) everywhere
 *   past the API boundary, which avoids floating-point inaccuracies with financial
 *   data. The API boundary accepts decimal naira and converts exactly once.
 */

package domain

import (
	"github.com/shopspring/decimal"
)

// WithdrawalRequest is the DTO for an incoming withdrawal API request.
// The amount arrives in major currency units (naira) and may carry decimals.
type WithdrawalRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	AccountNumber   string          `json:"accountNumber"`
	BankCode        string          `json:"bankCode"`
	BeneficiaryName string          `json:"beneficiaryName"`
}

// LookupRequest is the DTO for an account name resolution request.
type LookupRequest struct {
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
}

// LookupResult carries the outcome of a gateway account resolution.
// AccountName is empty when the gateway could not resolve a holder name;
// callers must treat that as a lookup failure.
type LookupResult struct {
	AccountName string
	RawMessage  string
}

// TransferReceipt is the success result of a submitted transfer.
type TransferReceipt struct {
	Reference string
	Status    string
}

// Bank is one entry of the gateway's bank directory.
type Bank struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Currency string `json:"currency"`
}
