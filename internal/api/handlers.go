/**
 * @description
 * This file contains the HTTP handlers for the payout-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * Error policy: caller input and business-rule rejections are surfaced with a
 * helpful message; infrastructure failures are logged in detail server-side and
 * returned as a generic message.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain: For service logic and models.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/payrelay/payout-service/internal/app"
	"github.com/payrelay/payout-service/internal/domain"
)

// PayoutHandlers holds the application service that handlers will use.
type PayoutHandlers struct {
	service *app.Service
}

// NewPayoutHandlers creates a new instance of PayoutHandlers.
func NewPayoutHandlers(service *app.Service) *PayoutHandlers {
	return &PayoutHandlers{service: service}
}

type lookupResponse struct {
	Success     bool   `json:"success"`
	AccountName string `json:"accountName,omitempty"`
	Message     string `json:"message,omitempty"`
}

type withdrawResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

// LookupHandler handles requests to resolve an account number + bank code to
// the account holder name.
func (h *PayoutHandlers) LookupHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=lookup outcome=reject reason=invalid_json err=%v", err)
		h.writeJSON(w, http.StatusBadRequest, lookupResponse{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.service.LookupAccount(r.Context(), req.AccountNumber, req.BankCode)
	if err != nil {
		if errors.Is(err, app.ErrMissingAccountDetails) {
			h.writeJSON(w, http.StatusBadRequest, lookupResponse{Success: false, Message: err.Error()})
			return
		}
		log.Printf("level=error component=api endpoint=lookup outcome=failed account=%s bank=%s err=%v", req.AccountNumber, req.BankCode, err)
		h.writeJSON(w, http.StatusInternalServerError, lookupResponse{Success: false, Message: "Unable to verify account details"})
		return
	}

	if result.AccountName == "" {
		message := result.RawMessage
		if message == "" {
			message = "Could not resolve account name"
		}
		h.writeJSON(w, http.StatusOK, lookupResponse{Success: false, Message: message})
		return
	}

	h.writeJSON(w, http.StatusOK, lookupResponse{Success: true, AccountName: result.AccountName})
}

// WithdrawHandler handles withdrawal submissions.
func (h *PayoutHandlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=withdraw outcome=reject reason=invalid_json err=%v", err)
		h.writeJSON(w, http.StatusBadRequest, withdrawResponse{Success: false, Message: "Invalid request body"})
		return
	}

	receipt, err := h.service.Withdraw(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAmount),
			errors.Is(err, app.ErrMissingAccountDetails),
			errors.Is(err, app.ErrMissingBeneficiary),
			errors.Is(err, app.ErrNameMismatch):
			log.Printf("level=warn component=api endpoint=withdraw outcome=reject reason=%q account=%s", err, req.AccountNumber)
			h.writeJSON(w, http.StatusBadRequest, withdrawResponse{Success: false, Message: err.Error()})
			return
		}

		var rejected *app.TransferRejectedError
		if errors.As(err, &rejected) {
			// Gateway business rejection: relay the upstream message verbatim.
			log.Printf("level=warn component=api endpoint=withdraw outcome=transfer_failed account=%s message=%q", req.AccountNumber, rejected.Message)
			h.writeJSON(w, http.StatusOK, withdrawResponse{Success: false, Message: rejected.Error()})
			return
		}

		log.Printf("level=error component=api endpoint=withdraw outcome=failed account=%s err=%v", req.AccountNumber, err)
		h.writeJSON(w, http.StatusInternalServerError, withdrawResponse{Success: false, Message: "Withdrawal could not be processed"})
		return
	}

	h.writeJSON(w, http.StatusOK, withdrawResponse{Success: true, Ref: receipt.Reference, Message: "Transfer queued"})
}

// ListBanksHandler proxies the gateway's bank directory.
func (h *PayoutHandlers) ListBanksHandler(w http.ResponseWriter, r *http.Request) {
	banks, err := h.service.ListBanks(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=banks outcome=failed err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to fetch bank list")
		return
	}

	h.writeJSON(w, http.StatusOK, banks)
}

// writeJSON is a helper for writing JSON responses.
func (h *PayoutHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *PayoutHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
