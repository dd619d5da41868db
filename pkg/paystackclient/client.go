/**
 * @description
 * This package provides a client for interacting with the Paystack API.
 * It encapsulates the logic for making authenticated HTTP requests to Paystack's
 * endpoints, handling request body construction, and parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, net/url, time: Standard Go libraries.
 */
package paystackclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client is a client for the Paystack API.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// NewClient creates a new Paystack API client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope is Paystack's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ResolveData is the payload of a successful account resolution.
type ResolveData struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        int64  `json:"bank_id"`
}

// ResolveResponse is the parsed result of an account resolution call.
type ResolveResponse struct {
	AccountName string
	Message     string
}

// Bank is one entry of Paystack's bank directory.
type Bank struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Currency string `json:"currency"`
}

// TransferParams describes an outbound bank transfer.
type TransferParams struct {
	AmountKobo      int64
	Reference       string
	AccountNumber   string
	BankCode        string
	BeneficiaryName string
	Currency        string
	Narration       string
}

// TransferResult is the parsed result of a transfer initiation.
type TransferResult struct {
	Status    string
	Reference string
	Message   string
}

// recipientData is the payload of a transfer recipient creation.
type recipientData struct {
	RecipientCode string `json:"recipient_code"`
}

// transferData is the payload of a transfer initiation.
type transferData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Code      string `json:"transfer_code"`
}

// APIError represents a non-2xx response from the Paystack API. The gateway
// message is preserved verbatim so business rejections (e.g. insufficient
// balance) can be relayed to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("paystack api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("paystack api error (status %d)", e.StatusCode)
}

// ResolveAccount resolves an account number + bank code to the account holder
// name. A 2xx response with an empty account name is returned as-is; callers
// decide how to treat an unresolvable account.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolveResponse, error) {
	query := url.Values{}
	query.Set("account_number", accountNumber)
	query.Set("bank_code", bankCode)

	env, err := c.do(ctx, http.MethodGet, "/bank/resolve?"+query.Encode(), nil, "resolve_account")
	if err != nil {
		return nil, err
	}

	var data ResolveData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode resolve response: %w", err)
		}
	}

	return &ResolveResponse{AccountName: data.AccountName, Message: env.Message}, nil
}

// ListBanks fetches the gateway's bank directory for the given currency.
func (c *Client) ListBanks(ctx context.Context, currency string) ([]Bank, error) {
	path := "/bank"
	if currency != "" {
		path += "?currency=" + url.QueryEscape(currency)
	}

	env, err := c.do(ctx, http.MethodGet, path, nil, "list_banks")
	if err != nil {
		return nil, err
	}

	var banks []Bank
	if err := json.Unmarshal(env.Data, &banks); err != nil {
		return nil, fmt.Errorf("failed to decode bank list: %w", err)
	}
	return banks, nil
}

// Transfer submits a bank transfer. Paystack models this as two calls: a
// transfer recipient is registered for the destination account, then the
// transfer itself is initiated against the recipient code.
func (c *Client) Transfer(ctx context.Context, params TransferParams) (*TransferResult, error) {
	recipientPayload := map[string]string{
		"type":           "nuban",
		"name":           params.BeneficiaryName,
		"account_number": params.AccountNumber,
		"bank_code":      params.BankCode,
		"currency":       params.Currency,
	}

	recipientEnv, err := c.do(ctx, http.MethodPost, "/transferrecipient", recipientPayload, "create_recipient")
	if err != nil {
		return nil, err
	}
	var recipient recipientData
	if err := json.Unmarshal(recipientEnv.Data, &recipient); err != nil {
		return nil, fmt.Errorf("failed to decode recipient response: %w", err)
	}
	if recipient.RecipientCode == "" {
		return nil, fmt.Errorf("gateway returned empty recipient code")
	}

	transferPayload := map[string]interface{}{
		"source":    "balance",
		"amount":    params.AmountKobo,
		"reference": params.Reference,
		"recipient": recipient.RecipientCode,
		"reason":    params.Narration,
		"currency":  params.Currency,
	}

	transferEnv, err := c.do(ctx, http.MethodPost, "/transfer", transferPayload, "initiate_transfer")
	if err != nil {
		return nil, err
	}
	var transfer transferData
	if err := json.Unmarshal(transferEnv.Data, &transfer); err != nil {
		return nil, fmt.Errorf("failed to decode transfer response: %w", err)
	}
	if transfer.Reference == "" {
		transfer.Reference = params.Reference
	}

	return &TransferResult{
		Status:    transfer.Status,
		Reference: transfer.Reference,
		Message:   transferEnv.Message,
	}, nil
}

// do executes one authenticated request against the Paystack API and unwraps
// the standard response envelope. Non-2xx responses become *APIError with the
// gateway message preserved.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, op string) (*envelope, error) {
	var reqBody io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewBuffer(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("level=warn component=paystack_client op=%s status=%d msg=\"non-2xx response (unparsable body)\"", op, resp.StatusCode)
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=paystack_client op=%s status=%d message=%q", op, resp.StatusCode, env.Message)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}
