package models

import "time"

// LedgerAccount is one balance in the payment-token ledger, keyed by wallet
// address. Balances are int64 micro-units and never go negative.
type LedgerAccount struct {
	Address   string    `gorm:"primaryKey;size:128" json:"address"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerAllowance lets a spender move up to Amount out of Owner's account,
// standard fungible-token approve/transferFrom semantics.
type LedgerAllowance struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Owner     string    `gorm:"size:128;not null;index:idx_allowance,unique" json:"owner"`
	Spender   string    `gorm:"size:128;not null;index:idx_allowance,unique" json:"spender"`
	Amount    int64     `gorm:"not null" json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}
