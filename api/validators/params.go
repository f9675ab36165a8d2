package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/account"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/amount"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
)

// ParseIDParam reads a positive numeric URL parameter.
func ParseIDParam(r *http.Request, key string) (uint64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter required").WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseAccountParam reads and checksums an address URL parameter.
func ParseAccountParam(r *http.Request, key string) (string, error) {
	return account.Normalize(chi.URLParam(r, key))
}

// ParseAmount converts a display amount into base units. Range rules belong
// to the services.
func ParseAmount(field, value string, decimals int32) (int64, error) {
	units, err := amount.Parse(strings.TrimSpace(value), decimals)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{field: err.Error()})
	}
	return units, nil
}
