package controllers

import (
	"net/http"

	"github.com/angelmondragon/ticket-escrow-backend/api/middleware"
	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	"github.com/angelmondragon/ticket-escrow-backend/api/validators"
	"github.com/angelmondragon/ticket-escrow-backend/internal/bids"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

type placeBidRequest struct {
	Amount    string `json:"amount" validate:"required"`
	BidderRef string `json:"bidderRef" validate:"max=128"`
}

// BidPlace escrows a bid from the authenticated caller. The caller must have
// approved the custody account for at least the bid amount.
func BidPlace(svc bids.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bid service unavailable"))
			return
		}

		caller := middleware.AccountFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
			return
		}

		listingID, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeBidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		units, err := validators.ParseAmount("amount", payload.Amount, decimals)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bid, err := svc.PlaceBid(r.Context(), bids.PlaceBidInput{
			ListingID: listingID,
			Bidder:    caller,
			BidderRef: validators.SanitizeString(payload.BidderRef, 128),
			Amount:    units,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newBidDTO(*bid, decimals))
	}
}

func ListingBids(svc bids.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForListing(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBidDTOs(rows, decimals))
	}
}

func BidderBids(svc bids.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidder, err := validators.ParseAccountParam(r, "account")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForBidder(r.Context(), bidder)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBidDTOs(rows, decimals))
	}
}
