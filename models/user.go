package models

import "time"

// User mirrors the compliance state of a wallet address. KYC gates minting,
// IDENT (the stricter check) gates claiming.
// Populated locally via the admin endpoints and kept in sync with the
// external compliance service by the compliance sync worker.
type User struct {
	Address       string    `gorm:"primaryKey;size:128" json:"address"`
	KYCVerified   bool      `gorm:"not null;default:false" json:"kyc_verified"`
	IdentVerified bool      `gorm:"not null;default:false" json:"ident_verified"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AllowlistAllocation is the remaining number of tokens an address may mint
// from a paused collection.
type AllowlistAllocation struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	CollectionID uint   `gorm:"not null;index:idx_allowlist,unique" json:"collection_id"`
	Address      string `gorm:"size:128;not null;index:idx_allowlist,unique" json:"address"`
	Remaining    int64  `gorm:"not null" json:"remaining"`
}

// RemoteComplianceRecord mirrors the payload of the external compliance
// service (read-only, consumed by the sync worker).
type RemoteComplianceRecord struct {
	Address       string    `json:"address"`
	KYCVerified   bool      `json:"kyc_verified"`
	IdentVerified bool      `json:"ident_verified"`
	UpdatedAt     time.Time `json:"updated_at"`
}
