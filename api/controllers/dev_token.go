package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	"github.com/angelmondragon/ticket-escrow-backend/api/validators"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/auth"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

type devTokenRequest struct {
	Account string `json:"account" validate:"required,eth_addr"`
}

// DevToken mints an access token for any address. Mounted outside prod only.
func DevToken(cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload devTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		now := time.Now()
		token, err := auth.MintAccessToken(cfg, now, payload.Account)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"accessToken": token,
			"tokenType":   "Bearer",
			"expiresAt":   now.Add(cfg.Expiration()).UTC(),
		})
	}
}
