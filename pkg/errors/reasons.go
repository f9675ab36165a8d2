package errors

// Reason identifies a marketplace rule that rejected an operation.
type Reason string

const (
	ReasonInvalidListing         Reason = "INVALID_LISTING"
	ReasonListingNotFound        Reason = "LISTING_NOT_FOUND"
	ReasonListingClosed          Reason = "LISTING_CLOSED"
	ReasonBiddingExpired         Reason = "BIDDING_EXPIRED"
	ReasonBidTooLow              Reason = "BID_TOO_LOW"
	ReasonDuplicateBid           Reason = "DUPLICATE_BID"
	ReasonTransferRejected       Reason = "TRANSFER_REJECTED"
	ReasonNotVerifier            Reason = "NOT_VERIFIER"
	ReasonNotOwner               Reason = "NOT_OWNER"
	ReasonListingAlreadyResolved Reason = "LISTING_ALREADY_RESOLVED"
	ReasonInsufficientFunds      Reason = "INSUFFICIENT_FUNDS"
	ReasonNotAuthorized          Reason = "NOT_AUTHORIZED"
	ReasonInvalidAccount         Reason = "INVALID_ACCOUNT"
)

var (
	ErrInvalidListing         = NewReason(CodeValidation, ReasonInvalidListing, "invalid listing")
	ErrListingNotFound        = NewReason(CodeNotFound, ReasonListingNotFound, "listing not found")
	ErrListingClosed          = NewReason(CodeStateConflict, ReasonListingClosed, "listing is not open")
	ErrBiddingExpired         = NewReason(CodeStateConflict, ReasonBiddingExpired, "bidding deadline has passed")
	ErrBidTooLow              = NewReason(CodeValidation, ReasonBidTooLow, "bid below minimum")
	ErrDuplicateBid           = NewReason(CodeValidation, ReasonDuplicateBid, "bidder already holds an active bid")
	ErrTransferRejected       = NewReason(CodeTransferRejected, ReasonTransferRejected, "funds transfer rejected")
	ErrNotVerifier            = NewReason(CodeForbidden, ReasonNotVerifier, "caller is not the verifier")
	ErrNotOwner               = NewReason(CodeForbidden, ReasonNotOwner, "caller is not the owner")
	ErrListingAlreadyResolved = NewReason(CodeStateConflict, ReasonListingAlreadyResolved, "listing already resolved")

	// Ledger outcomes. Callers in the bid path surface them as ErrTransferRejected.
	ErrInsufficientFunds = NewReason(CodeTransferRejected, ReasonInsufficientFunds, "insufficient funds")
	ErrNotAuthorized     = NewReason(CodeTransferRejected, ReasonNotAuthorized, "transfer not authorized")

	ErrInvalidAccount = NewReason(CodeValidation, ReasonInvalidAccount, "invalid account address")
)
