package models

import "time"

// ClaimReceipt = one token successfully claimed against a distribution event.
// OldTokenID is the identity that was consumed, NewTokenID the replacement
// issued to the same owner.
type ClaimReceipt struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	EventID      uint      `gorm:"not null;index" json:"event_id"`
	CollectionID uint      `gorm:"not null" json:"collection_id"`
	OldTokenID   int64     `gorm:"not null" json:"old_token_id"`
	NewTokenID   int64     `gorm:"not null" json:"new_token_id"`
	Claimant     string    `gorm:"size:128;not null;index" json:"claimant"`
	ClaimAmount  int64     `gorm:"not null" json:"claim_amount"`
	FeeAmount    int64     `gorm:"not null" json:"fee_amount"`
	PayoutAmount int64     `gorm:"not null" json:"payout_amount"`
	ClaimedAt    time.Time `json:"claimed_at" gorm:"autoCreateTime"`
}

// SettlementReport records the closing sweep of a distribution event and,
// when the upload succeeded, where the CSV settlement report lives.
type SettlementReport struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	EventID     uint      `gorm:"uniqueIndex;not null" json:"event_id"`
	SweptAmount int64     `gorm:"not null" json:"swept_amount"`
	ClaimCount  int64     `gorm:"not null" json:"claim_count"`
	ReportURL   string    `gorm:"type:text" json:"report_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
