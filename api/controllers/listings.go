package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/api/middleware"
	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	"github.com/angelmondragon/ticket-escrow-backend/api/validators"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

const maxTextField = 512

// createListingRequest only bounds field sizes; listing rules are enforced by
// the listing service so rejections carry the INVALID_LISTING reason.
type createListingRequest struct {
	SellerRef          string    `json:"sellerRef" validate:"max=128"`
	EventName          string    `json:"eventName" validate:"max=512"`
	EventDetails       string    `json:"eventDetails" validate:"max=512"`
	EventDate          string    `json:"eventDate" validate:"max=128"`
	Location           string    `json:"location" validate:"max=512"`
	MediaRef           string    `json:"mediaRef" validate:"max=512"`
	MinimumBid         string    `json:"minimumBid" validate:"required"`
	BidDeadline        time.Time `json:"bidDeadline"`
	ResolutionDeadline time.Time `json:"resolutionDeadline"`
}

// ListingCreate registers a listing owned by the authenticated caller.
func ListingCreate(svc listings.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		caller := middleware.AccountFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		minimum, err := validators.ParseAmount("minimumBid", payload.MinimumBid, decimals)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), listings.CreateListingInput{
			Seller:             caller,
			SellerRef:          validators.SanitizeString(payload.SellerRef, 128),
			EventName:          validators.SanitizeString(payload.EventName, maxTextField),
			EventDetails:       validators.SanitizeString(payload.EventDetails, maxTextField),
			EventDate:          validators.SanitizeString(payload.EventDate, 128),
			Location:           validators.SanitizeString(payload.Location, maxTextField),
			MediaRef:           validators.SanitizeString(payload.MediaRef, maxTextField),
			MinimumBid:         minimum,
			BidDeadline:        payload.BidDeadline,
			ResolutionDeadline: payload.ResolutionDeadline,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newListingDTO(*listing, decimals))
	}
}

// ListingGet returns one listing by id.
func ListingGet(svc listings.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingDTO(*listing, decimals))
	}
}

func ListingList(svc listings.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingDTOs(rows, decimals))
	}
}

func SellerListings(svc listings.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seller, err := validators.ParseAccountParam(r, "account")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByOwner(r.Context(), seller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingDTOs(rows, decimals))
	}
}
