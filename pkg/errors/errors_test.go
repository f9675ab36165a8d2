package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeTransferRejected, status: http.StatusPaymentRequired, publicMsg: "funds transfer rejected", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many requests", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	withDetails := base.WithDetails(map[string]any{"field": "foo"})
	if withDetails.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestWithDetailsLeavesSentinelUntouched(t *testing.T) {
	copyErr := ErrBidTooLow.WithDetails(map[string]any{"minimum": 10})
	if ErrBidTooLow.Details() != nil {
		t.Fatalf("sentinel details mutated")
	}
	if !stdErrors.Is(copyErr, ErrBidTooLow) {
		t.Fatalf("copy should still match sentinel")
	}
	if stdErrors.Is(copyErr, ErrDuplicateBid) {
		t.Fatalf("copy must not match a different reason")
	}
}

func TestReasonMatchingThroughWrapping(t *testing.T) {
	rejected := ErrTransferRejected.WithCause(ErrNotAuthorized)
	outer := fmt.Errorf("place bid: %w", rejected)

	if !stdErrors.Is(outer, ErrTransferRejected) {
		t.Fatalf("expected transfer rejected in chain")
	}
	if !stdErrors.Is(outer, ErrNotAuthorized) {
		t.Fatalf("expected ledger cause in chain")
	}
	if stdErrors.Is(outer, ErrInsufficientFunds) {
		t.Fatalf("unexpected insufficient funds match")
	}
	if got := As(outer); got == nil || got.Reason() != ReasonTransferRejected {
		t.Fatalf("As should surface the outermost typed error, got %v", got)
	}
}

func TestPlainErrorsDoNotMatchByCode(t *testing.T) {
	a := New(CodeValidation, "a")
	b := New(CodeValidation, "b")
	if stdErrors.Is(a, b) {
		t.Fatalf("errors without reason should only match themselves")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrListingNotFound)
	d := Dump(err)
	if d.Code != CodeNotFound {
		t.Fatalf("expected not found code, got %s", d.Code)
	}
	if d.Reason != ReasonListingNotFound {
		t.Fatalf("expected listing not found reason, got %s", d.Reason)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
}
