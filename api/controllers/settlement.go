package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ticket-escrow-backend/api/middleware"
	"github.com/angelmondragon/ticket-escrow-backend/api/responses"
	"github.com/angelmondragon/ticket-escrow-backend/api/validators"
	"github.com/angelmondragon/ticket-escrow-backend/internal/expiry"
	"github.com/angelmondragon/ticket-escrow-backend/internal/settlement"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

// Sweeper runs an expiry pass on demand.
type Sweeper interface {
	SweepExpired(ctx context.Context) (expiry.SweepResult, error)
}

type attestationRequest struct {
	Delivered *bool `json:"delivered" validate:"required"`
}

// ListingBestBid reports the bid that would win right now without moving funds.
func ListingBestBid(svc settlement.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		best, err := svc.EvaluateBestBid(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBestBidDTO(listingID, best, decimals))
	}
}

// ListingAttest settles or closes a listing on the verifier's delivery report.
func ListingAttest(svc settlement.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		var payload attestationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.ResolveWithAttestation(r.Context(), settlement.ResolveInput{
			ListingID: listingID,
			Caller:    caller,
			Delivered: *payload.Delivered,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newResolutionDTO(res, decimals))
	}
}

// ListingClose runs the refund path for one expired listing. Anyone may ask;
// a listing that is not expired or already resolved is reported as skipped.
func ListingClose(svc settlement.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.CloseUnresolved(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if res == nil {
			responses.WriteSuccess(w, map[string]any{"listingId": listingID, "closed": false})
			return
		}
		responses.WriteSuccess(w, map[string]any{"listingId": listingID, "closed": true, "resolution": newResolutionDTO(res, decimals)})
	}
}

// ListingCustody reports the escrowed balance still attributed to a listing.
func ListingCustody(svc settlement.Service, decimals int32, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := validators.ParseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		held, err := svc.CustodyForListing(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"listingId": listingID, "custody": newMoney(held, decimals)})
	}
}

// SweepRun closes every expired listing. Partial failures still return the
// listings that were closed, with the failed ids in the error details.
func SweepRun(sweeper Sweeper, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sweeper == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sweeper unavailable"))
			return
		}
		result, err := sweeper.SweepExpired(r.Context())
		if err != nil {
			typed := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sweep incomplete").WithDetails(map[string]any{
				"closed": result.Closed,
				"failed": result.Failed,
			})
			responses.WriteError(r.Context(), logg, w, typed)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
