package controllers

import (
	"net/http"

	"github.com/angelmondragon/ticket-escrow-backend/api/middleware"
	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	"github.com/angelmondragon/ticket-escrow-backend/api/validators"
	"github.com/angelmondragon/ticket-escrow-backend/internal/ledger"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

type approveRequest struct {
	Spender string `json:"spender" validate:"omitempty,eth_addr"`
	Amount  string `json:"amount" validate:"required"`
}

type mintRequest struct {
	To     string `json:"to" validate:"required,eth_addr"`
	Amount string `json:"amount" validate:"required"`
}

// AccountBalance reports the ledger balance and the allowance the custody
// account may pull from it.
func AccountBalance(svc ledger.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := validators.ParseAccountParam(r, "account")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		balance, err := svc.Balance(r.Context(), addr)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		allowance, err := svc.Allowance(r.Context(), addr, svc.CustodyAccount())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"account":          addr,
			"balance":          newMoney(balance, decimals),
			"custodyAllowance": newMoney(allowance, decimals),
		})
	}
}

// AccountHistory returns the newest ledger movements for an account.
func AccountHistory(svc ledger.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := validators.ParseAccountParam(r, "account")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.History(r.Context(), addr, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newLedgerEventDTOs(rows, decimals))
	}
}

// LedgerApprove sets the caller's allowance for a spender, the custody
// account unless another is named.
func LedgerApprove(svc ledger.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.AccountFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
			return
		}

		var payload approveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		units, err := validators.ParseAmount("amount", payload.Amount, decimals)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spender := payload.Spender
		if spender == "" {
			spender = svc.CustodyAccount()
		}

		if err := svc.Approve(r.Context(), caller, spender, units); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"owner":     caller,
			"spender":   spender,
			"allowance": newMoney(units, decimals),
		})
	}
}

// LedgerMint issues demo tokens. Only the marketplace owner may mint.
func LedgerMint(svc ledger.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.AccountFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
			return
		}

		var payload mintRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		units, err := validators.ParseAmount("amount", payload.Amount, decimals)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Mint(r.Context(), caller, payload.To, units); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"to":     payload.To,
			"amount": newMoney(units, decimals),
		})
	}
}
