package controllers

import (
	"net/http"

	"github.com/angelmondragon/ticket-escrow-backend/api/middleware"
	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	"github.com/angelmondragon/ticket-escrow-backend/api/validators"
	"github.com/angelmondragon/ticket-escrow-backend/internal/access"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/config"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

type MarketplaceDTO struct {
	Owner          string  `json:"owner"`
	Verifier       *string `json:"verifier"`
	CustodyAccount string  `json:"custodyAccount"`
	TokenSymbol    string  `json:"tokenSymbol"`
	TokenDecimals  int32   `json:"tokenDecimals"`
}

func newMarketplaceDTO(settings *models.MarketplaceSettings, escrow config.EscrowConfig) MarketplaceDTO {
	return MarketplaceDTO{
		Owner:          settings.Owner,
		Verifier:       settings.Verifier,
		CustodyAccount: settings.CustodyAccount,
		TokenSymbol:    escrow.TokenSymbol,
		TokenDecimals:  escrow.TokenDecimals,
	}
}

type setVerifierRequest struct {
	Verifier string `json:"verifier" validate:"required,eth_addr"`
}

func MarketplaceInfo(svc access.Service, escrow config.EscrowConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.Settings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMarketplaceDTO(settings, escrow))
	}
}

// AdminSetVerifier replaces the verifier. Only the owner may call it.
func AdminSetVerifier(svc access.Service, escrow config.EscrowConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.AccountFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
			return
		}

		var payload setVerifierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.SetVerifier(r.Context(), caller, payload.Verifier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMarketplaceDTO(settings, escrow))
	}
}
