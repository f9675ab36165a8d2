package models

import "time"

// LedgerAccount is the token balance of one address in base units.
type LedgerAccount struct {
	Address   string    `gorm:"column:address;primaryKey"`
	Balance   int64     `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LedgerAllowance is the amount spender may pull from owner.
type LedgerAllowance struct {
	Owner     string    `gorm:"column:owner;primaryKey"`
	Spender   string    `gorm:"column:spender;primaryKey"`
	Amount    int64     `gorm:"column:amount;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
