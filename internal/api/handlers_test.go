package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/payrelay/payout-service/internal/app"
	"github.com/payrelay/payout-service/pkg/paystackclient"
)

// fakeGateway implements app.Gateway with programmable behavior.
type fakeGateway struct {
	resolveName string
	resolveErr  error

	transferStatus string
	transferErr    error
	transferCalls  int
}

func (g *fakeGateway) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystackclient.ResolveResponse, error) {
	if g.resolveErr != nil {
		return nil, g.resolveErr
	}
	return &paystackclient.ResolveResponse{AccountName: g.resolveName}, nil
}

func (g *fakeGateway) Transfer(ctx context.Context, params paystackclient.TransferParams) (*paystackclient.TransferResult, error) {
	g.transferCalls++
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	status := g.transferStatus
	if status == "" {
		status = "pending"
	}
	return &paystackclient.TransferResult{Status: status, Reference: params.Reference}, nil
}

func (g *fakeGateway) ListBanks(ctx context.Context, currency string) ([]paystackclient.Bank, error) {
	return []paystackclient.Bank{{Name: "Test Bank", Code: "058", Currency: currency}}, nil
}

type staticRefGenerator struct{}

func (staticRefGenerator) NewReference() string { return "payout_handler_test" }

func newTestHandlers(gateway *fakeGateway) *PayoutHandlers {
	svc := app.NewService(nil, gateway, nil, staticRefGenerator{}, "NGN", "")
	return NewPayoutHandlers(svc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rr.Body.String())
	}
	return out
}

func TestLookupHandler_ResolvesAccountName(t *testing.T) {
	h := newTestHandlers(&fakeGateway{resolveName: "ADE ABUKA JOY"})

	rr := postJSON(t, h.LookupHandler, `{"accountNumber":"0123456789","bankCode":"058"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != true || body["accountName"] != "ADE ABUKA JOY" {
		t.Fatalf("unexpected response: %v", body)
	}
}

func TestLookupHandler_MissingFieldsReturn400(t *testing.T) {
	h := newTestHandlers(&fakeGateway{resolveName: "ADE ABUKA JOY"})

	rr := postJSON(t, h.LookupHandler, `{"accountNumber":"0123456789"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLookupHandler_GatewayFailureReturnsGeneric500(t *testing.T) {
	h := newTestHandlers(&fakeGateway{resolveErr: errors.New("dial tcp: i/o timeout")})

	rr := postJSON(t, h.LookupHandler, `{"accountNumber":"0123456789","bankCode":"058"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if msg, _ := body["message"].(string); strings.Contains(msg, "timeout") {
		t.Fatalf("internal error details must not leak to the caller: %q", msg)
	}
}

func TestLookupHandler_UnresolvedNameIsSuccessFalse(t *testing.T) {
	h := newTestHandlers(&fakeGateway{resolveName: ""})

	rr := postJSON(t, h.LookupHandler, `{"accountNumber":"0123456789","bankCode":"058"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false {
		t.Fatalf("expected success=false for an unresolved name: %v", body)
	}
}

func TestWithdrawHandler_HappyPathReturnsReference(t *testing.T) {
	gateway := &fakeGateway{resolveName: "Ade Abuka Joy"}
	h := newTestHandlers(gateway)

	rr := postJSON(t, h.WithdrawHandler,
		`{"amount":150.5,"accountNumber":"0123456789","bankCode":"058","beneficiaryName":"Joy Ade Abuka"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["success"] != true || body["ref"] != "payout_handler_test" {
		t.Fatalf("unexpected response: %v", body)
	}
}

func TestWithdrawHandler_ValidationErrorsReturn400(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "zero amount", body: `{"amount":0,"accountNumber":"0123456789","bankCode":"058","beneficiaryName":"Ade Joy"}`},
		{name: "missing account", body: `{"amount":100,"bankCode":"058","beneficiaryName":"Ade Joy"}`},
		{name: "missing beneficiary", body: `{"amount":100,"accountNumber":"0123456789","bankCode":"058"}`},
		{name: "malformed json", body: `{"amount":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{resolveName: "Ade Joy"}
			h := newTestHandlers(gateway)

			rr := postJSON(t, h.WithdrawHandler, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if gateway.transferCalls != 0 {
				t.Fatalf("expected no transfer attempt, got %d", gateway.transferCalls)
			}
		})
	}
}

func TestWithdrawHandler_NameMismatchReturns400WithoutTransfer(t *testing.T) {
	gateway := &fakeGateway{resolveName: "Jane Doe"}
	h := newTestHandlers(gateway)

	rr := postJSON(t, h.WithdrawHandler,
		`{"amount":150.5,"accountNumber":"0123456789","bankCode":"058","beneficiaryName":"Ade Abuka Joy"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if gateway.transferCalls != 0 {
		t.Fatalf("expected no transfer attempt after a name mismatch, got %d", gateway.transferCalls)
	}
}

func TestWithdrawHandler_GatewayRejectionIs200WithVerbatimMessage(t *testing.T) {
	gateway := &fakeGateway{
		resolveName: "Ade Abuka Joy",
		transferErr: &paystackclient.APIError{StatusCode: 400, Message: "Your balance is not enough"},
	}
	h := newTestHandlers(gateway)

	rr := postJSON(t, h.WithdrawHandler,
		`{"amount":150.5,"accountNumber":"0123456789","bankCode":"058","beneficiaryName":"Ade Abuka Joy"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for a business rejection, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false || body["message"] != "Your balance is not enough" {
		t.Fatalf("expected verbatim gateway message: %v", body)
	}
}

func TestWithdrawHandler_TransportFailureReturnsGeneric500(t *testing.T) {
	gateway := &fakeGateway{
		resolveName: "Ade Abuka Joy",
		transferErr: errors.New("connection reset by peer"),
	}
	h := newTestHandlers(gateway)

	rr := postJSON(t, h.WithdrawHandler,
		`{"amount":150.5,"accountNumber":"0123456789","bankCode":"058","beneficiaryName":"Ade Abuka Joy"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if msg, _ := body["message"].(string); strings.Contains(msg, "connection reset") {
		t.Fatalf("internal error details must not leak to the caller: %q", msg)
	}
}

func TestListBanksHandler_ReturnsDirectory(t *testing.T) {
	h := newTestHandlers(&fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/banks", nil)
	rr := httptest.NewRecorder()
	h.ListBanksHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var banks []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &banks); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(banks) != 1 || banks[0]["code"] != "058" {
		t.Fatalf("unexpected bank list: %v", banks)
	}
}
