package validators

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
)

type sampleBody struct {
	Seller string `json:"seller" validate:"required,eth_addr"`
	Name   string `json:"name" validate:"required,max=8"`
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seller":"0x52908400098527886e0f7030069857d2e4169ee7","name":"a","extra":1}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seller":"nope","name":"far too long"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	if details["seller"] != "must be a hex account address" {
		t.Fatalf("unexpected seller message %q", details["seller"])
	}
	if details["name"] != "must be at most 8" {
		t.Fatalf("unexpected name message %q", details["name"])
	}
}

func TestParseIDParam(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "listingId", "42")
	id, err := ParseIDParam(req, "listingId")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}

	for _, raw := range []string{"0", "-1", "abc", ""} {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "listingId", raw)
		if _, err := ParseIDParam(req, "listingId"); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseAccountParam(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "account", "0x52908400098527886e0f7030069857d2e4169ee7")
	addr, err := ParseAccountParam(req, "account")
	if err != nil {
		t.Fatalf("parse account: %v", err)
	}
	if !strings.EqualFold(addr, "0x52908400098527886e0f7030069857d2e4169ee7") {
		t.Fatalf("unexpected address %s", addr)
	}

	bad := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "account", "0x123")
	if _, err := ParseAccountParam(bad, "account"); !errors.Is(err, pkgerrors.ErrInvalidAccount) {
		t.Fatalf("expected invalid account error, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	units, err := ParseAmount("amount", "1.5", 6)
	if err != nil || units != 1_500_000 {
		t.Fatalf("expected 1500000, got %d (%v)", units, err)
	}
	if _, err := ParseAmount("amount", "ten", 6); err == nil {
		t.Fatal("expected non numeric amount to be rejected")
	}
	if _, err := ParseAmount("amount", "0.0000001", 6); err == nil {
		t.Fatal("expected excess precision to be rejected")
	}
}

func TestParseQueryIntBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if v, err := ParseQueryInt(req, "limit", 10, 1, 100); err != nil || v != 10 {
		t.Fatalf("expected default 10, got %d (%v)", v, err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello world  ", 5); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	input := strings.Repeat("é", 300)
	got := SanitizeString(input, 511)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid utf-8")
	}
	if len(got) != 510 {
		t.Fatalf("expected 510 bytes, got %d", len(got))
	}
	if got := SanitizeString(input, 512); len(got) != 512 || !utf8.ValidString(got) {
		t.Fatalf("unexpected truncation at rune boundary: %d bytes", len(got))
	}
}
