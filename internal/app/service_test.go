package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/payrelay/payout-service/internal/domain"
	"github.com/payrelay/payout-service/pkg/paystackclient"
)

// gatewayStub implements the Gateway interface with programmable responses
// and call counters.
type gatewayStub struct {
	resolveCalls  int
	transferCalls int
	banksCalls    int

	resolveName string
	resolveErr  error

	transferResult *paystackclient.TransferResult
	transferErr    error
	lastTransfer   paystackclient.TransferParams
}

func (g *gatewayStub) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystackclient.ResolveResponse, error) {
	g.resolveCalls++
	if g.resolveErr != nil {
		return nil, g.resolveErr
	}
	return &paystackclient.ResolveResponse{AccountName: g.resolveName}, nil
}

func (g *gatewayStub) Transfer(ctx context.Context, params paystackclient.TransferParams) (*paystackclient.TransferResult, error) {
	g.transferCalls++
	g.lastTransfer = params
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	if g.transferResult != nil {
		return g.transferResult, nil
	}
	return &paystackclient.TransferResult{Status: "pending", Reference: params.Reference}, nil
}

func (g *gatewayStub) ListBanks(ctx context.Context, currency string) ([]paystackclient.Bank, error) {
	g.banksCalls++
	return []paystackclient.Bank{{Name: "Test Bank", Code: "058", Currency: currency}}, nil
}

type fixedRefGenerator struct {
	ref string
}

func (g fixedRefGenerator) NewReference() string { return g.ref }

func newTestService(gateway *gatewayStub) *Service {
	return NewService(nil, gateway, nil, fixedRefGenerator{ref: "payout_test_ref"}, "NGN", "Wallet withdrawal")
}

func validRequest() domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		Amount:          decimal.RequireFromString("150.5"),
		AccountNumber:   "0123456789",
		BankCode:        "058",
		BeneficiaryName: "Ade Abuka Joy",
	}
}

func TestWithdraw_RejectsInvalidInputBeforeGatewayCall(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.WithdrawalRequest)
		wantErr error
	}{
		{
			name:    "zero amount",
			mutate:  func(r *domain.WithdrawalRequest) { r.Amount = decimal.Zero },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(r *domain.WithdrawalRequest) { r.Amount = decimal.RequireFromString("-5") },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing account number",
			mutate:  func(r *domain.WithdrawalRequest) { r.AccountNumber = "  " },
			wantErr: ErrMissingAccountDetails,
		},
		{
			name:    "missing bank code",
			mutate:  func(r *domain.WithdrawalRequest) { r.BankCode = "" },
			wantErr: ErrMissingAccountDetails,
		},
		{
			name:    "missing beneficiary name",
			mutate:  func(r *domain.WithdrawalRequest) { r.BeneficiaryName = "" },
			wantErr: ErrMissingBeneficiary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &gatewayStub{resolveName: "Ade Abuka Joy"}
			svc := newTestService(gateway)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Withdraw(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if gateway.resolveCalls != 0 || gateway.transferCalls != 0 {
				t.Fatalf("gateway must not be called for invalid input: resolve=%d transfer=%d", gateway.resolveCalls, gateway.transferCalls)
			}
		})
	}
}

func TestWithdraw_NameMismatchNeverIssuesTransfer(t *testing.T) {
	gateway := &gatewayStub{resolveName: "Jane Doe"}
	svc := newTestService(gateway)

	_, err := svc.Withdraw(context.Background(), validRequest())
	if !errors.Is(err, ErrNameMismatch) {
		t.Fatalf("expected ErrNameMismatch, got %v", err)
	}
	if gateway.transferCalls != 0 {
		t.Fatalf("expected zero transfer calls, got %d", gateway.transferCalls)
	}
}

func TestWithdraw_UnresolvedAccountNameIsAMismatch(t *testing.T) {
	gateway := &gatewayStub{resolveName: ""}
	svc := newTestService(gateway)

	_, err := svc.Withdraw(context.Background(), validRequest())
	if !errors.Is(err, ErrNameMismatch) {
		t.Fatalf("expected ErrNameMismatch for unresolved account name, got %v", err)
	}
	if gateway.transferCalls != 0 {
		t.Fatalf("expected zero transfer calls, got %d", gateway.transferCalls)
	}
}

func TestWithdraw_LookupFailureSurfacesUpstreamErrorWithoutTransfer(t *testing.T) {
	gateway := &gatewayStub{resolveErr: errors.New("connection refused")}
	svc := newTestService(gateway)

	_, err := svc.Withdraw(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrNameMismatch) {
		t.Fatalf("lookup failure must not present as a name mismatch: %v", err)
	}
	if gateway.transferCalls != 0 {
		t.Fatalf("expected zero transfer calls after lookup failure, got %d", gateway.transferCalls)
	}
}

func TestWithdraw_SubmitsConvertedAmountAndGeneratedReference(t *testing.T) {
	gateway := &gatewayStub{resolveName: "Joy Ade Abuka"}
	svc := newTestService(gateway)

	receipt, err := svc.Withdraw(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.transferCalls != 1 {
		t.Fatalf("expected exactly one transfer call, got %d", gateway.transferCalls)
	}
	if gateway.lastTransfer.AmountKobo != 15050 {
		t.Fatalf("expected 15050 kobo, got %d", gateway.lastTransfer.AmountKobo)
	}
	if gateway.lastTransfer.Reference != "payout_test_ref" {
		t.Fatalf("expected generated reference, got %q", gateway.lastTransfer.Reference)
	}
	if gateway.lastTransfer.Currency != "NGN" {
		t.Fatalf("expected NGN currency, got %q", gateway.lastTransfer.Currency)
	}
	if receipt.Reference != "payout_test_ref" {
		t.Fatalf("expected receipt reference from generator, got %q", receipt.Reference)
	}
}

func TestWithdraw_GatewayRejectionRelaysVerbatimMessage(t *testing.T) {
	gateway := &gatewayStub{
		resolveName: "Ade Abuka Joy",
		transferErr: &paystackclient.APIError{StatusCode: 400, Message: "Your balance is not enough"},
	}
	svc := newTestService(gateway)

	_, err := svc.Withdraw(context.Background(), validRequest())
	var rejected *TransferRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected TransferRejectedError, got %v", err)
	}
	if rejected.Message != "Your balance is not enough" {
		t.Fatalf("expected verbatim gateway message, got %q", rejected.Message)
	}
}

func TestWithdraw_UnacceptedStatusIsRejection(t *testing.T) {
	gateway := &gatewayStub{
		resolveName:    "Ade Abuka Joy",
		transferResult: &paystackclient.TransferResult{Status: "failed", Message: "Transfer could not be completed"},
	}
	svc := newTestService(gateway)

	_, err := svc.Withdraw(context.Background(), validRequest())
	var rejected *TransferRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected TransferRejectedError, got %v", err)
	}
	if rejected.Message != "Transfer could not be completed" {
		t.Fatalf("expected upstream message, got %q", rejected.Message)
	}
}

func TestLookupAccount_RequiresBothFields(t *testing.T) {
	gateway := &gatewayStub{resolveName: "Ade Abuka Joy"}
	svc := newTestService(gateway)

	if _, err := svc.LookupAccount(context.Background(), "", "058"); !errors.Is(err, ErrMissingAccountDetails) {
		t.Fatalf("expected ErrMissingAccountDetails, got %v", err)
	}
	if _, err := svc.LookupAccount(context.Background(), "0123456789", ""); !errors.Is(err, ErrMissingAccountDetails) {
		t.Fatalf("expected ErrMissingAccountDetails, got %v", err)
	}
	if gateway.resolveCalls != 0 {
		t.Fatalf("expected zero resolve calls, got %d", gateway.resolveCalls)
	}
}

func TestAmountToKobo(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{amount: "150.5", want: 15050},
		{amount: "150.004", want: 15000},
		// Ties round away from zero.
		{amount: "150.005", want: 15001},
		{amount: "0.01", want: 1},
		{amount: "1", want: 100},
		{amount: "2500", want: 250000},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := AmountToKobo(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Fatalf("AmountToKobo(%s) = %d, expected %d", tt.amount, got, tt.want)
			}
		})
	}
}
