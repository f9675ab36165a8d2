package enums

import "fmt"

// LedgerEventType maps to the ledger_event_type_enum enum in Postgres.
type LedgerEventType string

const (
	LedgerEventTypeEscrowDebit  LedgerEventType = "escrow_debit"
	LedgerEventTypePayoutCredit LedgerEventType = "payout_credit"
	LedgerEventTypeRefundCredit LedgerEventType = "refund_credit"
	LedgerEventTypeMint         LedgerEventType = "mint"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventTypeEscrowDebit,
	LedgerEventTypePayoutCredit,
	LedgerEventTypeRefundCredit,
	LedgerEventTypeMint,
}

// IsValid reports whether the value matches the canonical ledger event enum.
func (t LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsCustodyCredit reports whether the event moves funds out of custody.
func (t LedgerEventType) IsCustodyCredit() bool {
	return t == LedgerEventTypePayoutCredit || t == LedgerEventTypeRefundCredit
}

// ParseLedgerEventType converts raw input into LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
